package brush

import (
	"math"

	"github.com/example/morningpaint/internal/raster"
)

// nibAngle is the fixed calligraphy nib orientation.
const nibAngle = math.Pi / 4

func paintFelt(p *painter, seg Segment, spec Spec) {
	g := measure(seg)
	pr := 0.7 + seg.Pressure*0.3
	w := spec.Size * 1.2 * pr
	h := spec.Size * 0.4 * pr
	paint := raster.Solid(spec.Color, 0.3+seg.Pressure*0.1)
	steps := g.steps(2)
	for i := 0; i <= steps; i++ {
		c := g.at(seg, float64(i)/float64(steps))
		p.roundedRect(c, w, h, h*0.4, g.angle+math.Pi/6, paint)
	}
}

// paintCalligraphy fills a quad around the segment whose width depends on
// how far the stroke direction turns from the nib: full width across the
// nib, a hairline along it.
func paintCalligraphy(p *painter, seg Segment, spec Spec) {
	g := measure(seg)
	w := spec.Size * (0.08 + math.Abs(math.Sin(g.angle-nibAngle))*0.92) * (0.5 + seg.Pressure*0.5)
	hx, hy := g.perpX*w*0.5, g.perpY*w*0.5
	quad := []raster.Point{
		raster.Pt(seg.From.X+hx, seg.From.Y+hy),
		raster.Pt(seg.To.X+hx, seg.To.Y+hy),
		raster.Pt(seg.To.X-hx, seg.To.Y-hy),
		raster.Pt(seg.From.X-hx, seg.From.Y-hy),
	}
	p.polygon(quad, raster.Solid(spec.Color, 0.88+seg.Pressure*0.12))
}

func paintEraser(p *painter, seg Segment, spec Spec) {
	g := measure(seg)
	r := spec.Size * 0.7
	paint := raster.Eraser(0.8 + seg.Pressure*0.2)
	steps := g.steps(2)
	for i := 0; i <= steps; i++ {
		p.circle(g.at(seg, float64(i)/float64(steps)), r, paint)
	}
}

// inkLayer is one pass of the ink wash, from the wide pale halo to the dense
// core.
type inkLayer struct {
	width, alpha float64
}

var inkLayers = [...]inkLayer{
	{width: 2.2, alpha: 0.05},
	{width: 1.4, alpha: 0.12},
	{width: 0.7, alpha: 0.45},
}

// paintInkWash lays three concentric strokes. Fast strokes thin out.
func paintInkWash(p *painter, seg Segment, spec Spec, env Env) {
	g := measure(seg)
	thin := 1 - 0.4*seg.Velocity
	r := env.Rand
	for _, l := range inkLayers {
		w := l.width * spec.Size * (0.6 + 0.4*seg.Pressure) * thin
		off := jitter(r) * w * 0.1
		ox, oy := g.perpX*off, g.perpY*off
		a := raster.Pt(seg.From.X+ox, seg.From.Y+oy)
		b := raster.Pt(seg.To.X+ox, seg.To.Y+oy)
		gr := env.Grain.At(b.X, b.Y)
		p.line(a, b, w, raster.Solid(spec.Color, l.alpha*(0.5+0.5*seg.Pressure)*(0.85+0.3*gr)))
	}
}
