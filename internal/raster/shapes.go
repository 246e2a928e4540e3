package raster

import "math"

// segmentsFor picks how many edges approximate a curve of radius r.
func segmentsFor(r float64) int {
	n := int(math.Ceil(r * 1.2))
	if n < 8 {
		n = 8
	}
	if n > 96 {
		n = 96
	}
	return n
}

func ellipsePoints(c Point, rx, ry, angle float64, reverse bool) []Point {
	n := segmentsFor(math.Max(rx, ry))
	sin, cos := math.Sincos(angle)
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		t := 2 * math.Pi * float64(i) / float64(n)
		if reverse {
			t = -t
		}
		ex, ey := rx*math.Cos(t), ry*math.Sin(t)
		pts[i] = Point{c.X + ex*cos - ey*sin, c.Y + ex*sin + ey*cos}
	}
	return pts
}

// FillPolygon fills the closed polygon pts.
func FillPolygon(dst Surface, pts []Point, p Paint) error {
	if len(pts) < 3 {
		return nil
	}
	return fill(dst, path{pts}, p)
}

// FillEllipse fills an ellipse centred on c with radii rx, ry rotated by angle
// radians.
func FillEllipse(dst Surface, c Point, rx, ry, angle float64, p Paint) error {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	return fill(dst, path{ellipsePoints(c, rx, ry, angle, false)}, p)
}

// FillCircle fills a disc of radius r centred on c.
func FillCircle(dst Surface, c Point, r float64, p Paint) error {
	return FillEllipse(dst, c, r, r, 0, p)
}

// FillRect fills a w×h rectangle centred on c rotated by angle radians.
func FillRect(dst Surface, c Point, w, h, angle float64, p Paint) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	hw, hh := w/2, h/2
	return fill(dst, path{transform(c, angle, []Point{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}})}, p)
}

// FillRoundedRect fills a w×h rectangle centred on c with corner radius
// radius, rotated by angle radians.
func FillRoundedRect(dst Surface, c Point, w, h, radius, angle float64, p Paint) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	hw, hh := w/2, h/2
	radius = math.Min(math.Max(radius, 0), math.Min(hw, hh))
	if radius == 0 {
		return FillRect(dst, c, w, h, angle, p)
	}
	n := segmentsFor(radius) / 4
	if n < 2 {
		n = 2
	}
	corners := []struct {
		cx, cy, start float64
	}{
		{hw - radius, -hh + radius, -math.Pi / 2},
		{hw - radius, hh - radius, 0},
		{-hw + radius, hh - radius, math.Pi / 2},
		{-hw + radius, -hh + radius, math.Pi},
	}
	local := make([]Point, 0, 4*(n+1))
	for _, k := range corners {
		for i := 0; i <= n; i++ {
			t := k.start + math.Pi/2*float64(i)/float64(n)
			local = append(local, Point{k.cx + radius*math.Cos(t), k.cy + radius*math.Sin(t)})
		}
	}
	return fill(dst, path{transform(c, angle, local)}, p)
}

// StrokeLine strokes a to b with the given width and round caps.
func StrokeLine(dst Surface, a, b Point, width float64, p Paint) error {
	if width <= 0 {
		return nil
	}
	return fill(dst, path{capsule(a, b, width/2)}, p)
}

// StrokePolyline strokes consecutive points with round joins. Overlapping
// pieces union, so the polyline is covered once.
func StrokePolyline(dst Surface, pts []Point, width float64, p Paint) error {
	if width <= 0 || len(pts) < 2 {
		return nil
	}
	var pp path
	for i := 1; i < len(pts); i++ {
		pp = append(pp, capsule(pts[i-1], pts[i], width/2))
	}
	return fill(dst, pp, p)
}

// StrokeCircle strokes the outline of a circle of radius r.
func StrokeCircle(dst Surface, c Point, r, width float64, p Paint) error {
	if width <= 0 || r <= 0 {
		return nil
	}
	outer := r + width/2
	inner := r - width/2
	pp := path{ellipsePoints(c, outer, outer, 0, false)}
	if inner > 0 {
		pp = append(pp, ellipsePoints(c, inner, inner, 0, true))
	}
	return fill(dst, pp, p)
}

// capsule returns the outline of a round-capped segment of half width hw.
func capsule(a, b Point, hw float64) []Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	angle := math.Atan2(dy, dx)
	n := segmentsFor(hw) / 2
	if n < 4 {
		n = 4
	}
	pts := make([]Point, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		t := angle - math.Pi/2 + math.Pi*float64(i)/float64(n)
		pts = append(pts, Point{b.X + hw*math.Cos(t), b.Y + hw*math.Sin(t)})
	}
	for i := 0; i <= n; i++ {
		t := angle + math.Pi/2 + math.Pi*float64(i)/float64(n)
		pts = append(pts, Point{a.X + hw*math.Cos(t), a.Y + hw*math.Sin(t)})
	}
	return pts
}

func transform(c Point, angle float64, local []Point) []Point {
	sin, cos := math.Sincos(angle)
	out := make([]Point, len(local))
	for i, q := range local {
		out[i] = Point{c.X + q.X*cos - q.Y*sin, c.Y + q.X*sin + q.Y*cos}
	}
	return out
}
