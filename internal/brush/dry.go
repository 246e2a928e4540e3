package brush

import (
	"math"

	"github.com/example/morningpaint/internal/raster"
)

// Dry media deposit on the paper peaks. A grain value below the pressure
// threshold is a valley the mark skips; harder pressure lowers the threshold.

func paintCharcoal(p *painter, seg Segment, spec Spec, env Env) {
	g := measure(seg)
	r := env.Rand
	pr := seg.Pressure
	baseW := spec.Size * (0.3 + pr*0.7)
	density := 0.35 + pr*0.45
	count := max(4, int(math.Floor(baseW*1.2)))
	threshold := 0.55 - pr*0.35
	ux, uy := g.dx/g.dist, g.dy/g.dist
	steps := g.steps(1.5)
	for i := 0; i <= steps; i++ {
		c := g.at(seg, float64(i)/float64(steps))
		for k := 0; k < count; k++ {
			if r.Float64() > density {
				continue
			}
			spread := jitter(r) * baseW
			along := jitter(r) * 3
			at := raster.Pt(c.X+g.perpX*spread+ux*along, c.Y+g.perpY*spread+uy*along)
			gr := env.Grain.At(at.X, at.Y)
			if gr < threshold {
				continue
			}
			boost := (gr - threshold) / (1 - threshold + 0.01)
			alpha := (0.18 + r.Float64()*0.32*pr) * (0.6 + boost*0.4)
			mw := 0.5 + r.Float64()*2
			mh := 0.3 + r.Float64()
			p.rect(at, mw*2, mh*2, g.angle+jitter(r)*1.2, raster.Solid(spec.Color, alpha))
		}
	}
}

func paintPastel(p *painter, seg Segment, spec Spec, env Env) {
	g := measure(seg)
	r := env.Rand
	pr := seg.Pressure
	baseW := spec.Size * (0.4 + pr*0.8)
	threshold := 0.5 - pr*0.35
	ux, uy := g.dx/g.dist, g.dy/g.dist
	marks := int(math.Floor(baseW*0.8)) + 3
	steps := g.steps(2)
	for i := 0; i <= steps; i++ {
		c := g.at(seg, float64(i)/float64(steps))
		for m := 0; m < marks; m++ {
			spread := jitter(r) * baseW
			along := jitter(r) * spec.Size * 0.2
			at := raster.Pt(c.X+g.perpX*spread+ux*along, c.Y+g.perpY*spread+uy*along)
			if r.Float64() < 0.15 {
				continue
			}
			gr := env.Grain.At(at.X, at.Y)
			if gr < threshold {
				continue
			}
			mod := (gr - threshold) / (1 - threshold + 0.01)
			alpha := (0.18 + r.Float64()*0.22) * (0.7 + mod*0.3)
			angle := g.angle + jitter(r)*0.3
			p.ellipse(at, 1.5+r.Float64()*2.5, 0.6+r.Float64(), angle, raster.Solid(spec.Color, alpha))
		}
	}

	// Crumbs along the edges.
	if g.dist > 3 {
		crumb := raster.Solid(spec.Color, 0.06)
		for i := 0; i < 4; i++ {
			c := g.at(seg, r.Float64())
			side := -1.0
			if r.Float64() > 0.5 {
				side = 1
			}
			d := baseW*0.5 + r.Float64()*baseW*0.3
			p.circle(raster.Pt(c.X+g.perpX*side*d, c.Y+g.perpY*side*d), 1+r.Float64()*2, crumb)
		}
	}
}
