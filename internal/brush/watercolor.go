package brush

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/example/morningpaint/internal/raster"
)

const (
	blobPoints = 14
	// blobCurveSteps flattens each quadratic edge of a blob.
	blobCurveSteps = 4
)

// blob returns an irregular closed outline around c. Each vertex sits at a
// random fraction of radius and consecutive vertices are joined by quadratic
// curves with jittered control points.
func blob(r *rand.Rand, c raster.Point, radius float64) []raster.Point {
	var verts [blobPoints]raster.Point
	step := 2 * math.Pi / blobPoints
	for i := range verts {
		a := float64(i) * step
		d := radius * (0.55 + r.Float64()*0.65)
		verts[i] = raster.Pt(c.X+math.Cos(a)*d, c.Y+math.Sin(a)*d)
	}
	out := make([]raster.Point, 0, blobPoints*blobCurveSteps)
	for i := range verts {
		p0, p2 := verts[i], verts[(i+1)%blobPoints]
		ctrl := raster.Pt(
			(p0.X+p2.X)*0.5+jitter(r)*radius*0.4,
			(p0.Y+p2.Y)*0.5+jitter(r)*radius*0.4,
		)
		for k := 0; k < blobCurveSteps; k++ {
			t := float64(k) / blobCurveSteps
			u := 1 - t
			out = append(out, raster.Pt(
				u*u*p0.X+2*u*t*ctrl.X+t*t*p2.X,
				u*u*p0.Y+2*u*t*ctrl.Y+t*t*p2.Y,
			))
		}
	}
	return out
}

func radial(c raster.Point, radius float64, col color.RGBA, alpha float64, stops ...raster.Stop) raster.Paint {
	return raster.Paint{
		Alpha:  alpha,
		Op:     raster.Over,
		Shader: &raster.RadialGradient{Center: c, Radius: radius, Color: col, Stops: stops},
	}
}

func paintWatercolor(p *painter, seg Segment, spec Spec, env Env) {
	g := measure(seg)
	if g.dist < 0.2 {
		return
	}
	r := env.Rand
	pr := seg.Pressure
	size := spec.Size
	speed := math.Max(0.65, math.Min(1, 1.1-seg.Velocity*0.35))
	w := size * (0.8 + pr*0.4)
	steps := g.steps(math.Max(size*0.3, 4))
	spread := w * 0.3

	// Wash body.
	wash := (0.06 + pr*0.1) * speed
	for i := 0; i <= steps; i++ {
		c := g.at(seg, float64(i)/float64(steps))
		c = raster.Pt(c.X+jitter(r)*spread, c.Y+jitter(r)*spread)
		mod := 0.7 + env.Grain.At(c.X, c.Y)*0.6
		rad := w * (0.7 + r.Float64()*0.5)
		outer := rad * 1.3
		p.polygon(blob(r, c, outer), radial(c, outer, spec.Color, wash*mod,
			raster.Stop{Offset: 0, Alpha: 1},
			raster.Stop{Offset: 0.5, Alpha: 0.65},
			raster.Stop{Offset: 0.8, Alpha: 0.25},
			raster.Stop{Offset: 1, Alpha: 0},
		))
	}

	// Blooms.
	if g.dist > 4 {
		n := int(math.Ceil(g.dist / (size * 1.5)))
		for i := 0; i < n; i++ {
			c := g.at(seg, r.Float64())
			c = raster.Pt(c.X+jitter(r)*w*0.7, c.Y+jitter(r)*w*0.7)
			gr := env.Grain.At(c.X, c.Y)
			br := w * (0.8 + r.Float64()*0.8)
			a := (0.02 + pr*0.04) * (0.5 + gr*0.5) * speed
			p.polygon(blob(r, c, br), radial(c, br, spec.Color, a,
				raster.Stop{Offset: 0, Alpha: 1},
				raster.Stop{Offset: 0.6, Alpha: 0.4},
				raster.Stop{Offset: 1, Alpha: 0},
			))
		}
	}

	// Edge accents where pigment pools.
	edge := (0.02 + pr*0.03) * speed
	lw := math.Max(w*0.08, 1)
	for i := 0; i <= steps; i += 2 {
		c := g.at(seg, float64(i)/float64(steps))
		c = raster.Pt(c.X+jitter(r)*spread*0.5, c.Y+jitter(r)*spread*0.5)
		gr := env.Grain.At(c.X, c.Y)
		outline := blob(r, c, w*(0.6+r.Float64()*0.3))
		outline = append(outline, outline[0])
		p.polyline(outline, lw, raster.Solid(spec.Color, edge*(0.5+gr)))
	}

	// Granulation in the paper valleys.
	if g.dist > 6 {
		dark := color.RGBA{
			R: uint8(max(0, int(spec.Color.R)-25)),
			G: uint8(max(0, int(spec.Color.G)-25)),
			B: uint8(max(0, int(spec.Color.B)-25)),
			A: 255,
		}
		spread := w * 0.6
		n := int(math.Ceil(g.dist / 4))
		for i := 0; i < n; i++ {
			c := g.at(seg, r.Float64())
			c = raster.Pt(c.X+jitter(r)*spread, c.Y+jitter(r)*spread)
			gr := env.Grain.At(c.X, c.Y)
			if gr < 0.4 {
				continue
			}
			p.circle(c, 0.5+r.Float64()*size*0.06, raster.Solid(dark, (0.08+pr*0.12)*gr*speed))
		}
	}
}

// PathPoint is one recorded point of a finished stroke.
type PathPoint struct {
	raster.Point
	Pressure float64
}

// WetEdge darkens both borders of a finished watercolor stroke, the way
// pigment pools as a wash dries. It paints straight onto dst, which should be
// the permanent canvas. Paths shorter than three points are ignored.
func WetEdge(dst raster.Surface, path []PathPoint, spec Spec, env Env) error {
	if len(path) < 3 {
		return nil
	}
	spec = spec.Normalize()
	env = env.withDefaults()
	r := env.Rand
	p := &painter{dst: dst, scale: float64(spec.Opacity) / 100}
	const edgeAlpha = 0.015
	edgeWidth := spec.Size * 0.1
	for side := -1.0; side <= 1; side += 2 {
		for i := 1; i < len(path)-1; i++ {
			prev, curr, next := path[i-1], path[i], path[i+1]
			dx, dy := next.X-prev.X, next.Y-prev.Y
			l := math.Hypot(dx, dy)
			if l == 0 {
				l = 1
			}
			nx, ny := -dy/l*side, dx/l*side
			pr := curr.Pressure
			if pr == 0 {
				pr = 0.5
			}
			rad := spec.Size * 0.4 * (0.8 + pr*0.4)
			off := rad + edgeWidth*0.5
			a := raster.Pt(prev.X+nx*off, prev.Y+ny*off)
			b := raster.Pt(curr.X+nx*off, curr.Y+ny*off)
			p.line(a, b, edgeWidth*(1+r.Float64()*0.5), raster.Solid(spec.Color, edgeAlpha))
		}
	}
	return p.err
}
