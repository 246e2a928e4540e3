// Package raster holds the drawing primitives brushes are built from.
//
// Every primitive is a pure function of its arguments: a world-space Surface to
// draw into, the geometry, and a Paint describing color, alpha and blend op.
// Nothing is remembered between calls.
package raster

import (
	"image/color"
	"math"
)

// Op selects how covered pixels combine with the destination.
type Op int

const (
	// Over is premultiplied source-over.
	Over Op = iota
	// Erase is destination-out: it removes destination alpha by the
	// coverage times the paint alpha.
	Erase
)

// Point is a world-space position.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Lerp returns the point t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Shader returns a non-premultiplied color for a world position.
type Shader interface {
	At(x, y float64) color.NRGBA
}

// Paint describes how a shape deposits color.
type Paint struct {
	// Color is used when Shader is nil. Its alpha is ignored; use Alpha.
	Color color.RGBA
	// Alpha scales coverage, 0..1.
	Alpha  float64
	Op     Op
	Shader Shader
}

// Solid returns an Over paint of c at alpha a.
func Solid(c color.RGBA, a float64) Paint {
	return Paint{Color: c, Alpha: a, Op: Over}
}

// Eraser returns an Erase paint at alpha a.
func Eraser(a float64) Paint {
	return Paint{Alpha: a, Op: Erase}
}

// Stop is one alpha stop of a gradient. Offset runs 0..1 from the centre.
type Stop struct {
	Offset float64
	Alpha  float64
}

// RadialGradient shades a circle with Color whose alpha follows Stops.
// Outside Radius the last stop applies.
type RadialGradient struct {
	Center Point
	Radius float64
	Color  color.RGBA
	Stops  []Stop
}

// At implements Shader.
func (g *RadialGradient) At(x, y float64) color.NRGBA {
	t := 1.0
	if g.Radius > 0 {
		t = math.Hypot(x-g.Center.X, y-g.Center.Y) / g.Radius
	}
	a := stopAlpha(g.Stops, t)
	return color.NRGBA{R: g.Color.R, G: g.Color.G, B: g.Color.B, A: clampByte(a * 255)}
}

func stopAlpha(stops []Stop, t float64) float64 {
	if len(stops) == 0 {
		return 1
	}
	if t <= stops[0].Offset {
		return stops[0].Alpha
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			a, b := stops[i-1], stops[i]
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Alpha
			}
			f := (t - a.Offset) / span
			return a.Alpha + (b.Alpha-a.Alpha)*f
		}
	}
	return stops[len(stops)-1].Alpha
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// Clamp01 clamps v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
