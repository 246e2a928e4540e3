package brush

import (
	"image"
	"image/color"
	"math"

	"github.com/example/morningpaint/internal/raster"
)

// smudgeSample averages the straight color inside a disc of radius sr around
// c, ignoring nearly transparent pixels. ok is false when too little paint
// lies under the disc.
func smudgeSample(env Env, c raster.Point, sr int) (col color.RGBA, alpha float64, ok bool) {
	x0 := int(math.Round(c.X - float64(sr)))
	y0 := int(math.Round(c.Y - float64(sr)))
	img := sample(env, image.Rect(x0, y0, x0+sr*2, y0+sr*2))
	if img == nil {
		return col, 0, false
	}
	var sumR, sumG, sumB, sumA float64
	n := 0
	for py := 0; py < sr*2; py++ {
		for px := 0; px < sr*2; px++ {
			dx, dy := px-sr, py-sr
			if dx*dx+dy*dy > sr*sr {
				continue
			}
			s := unpremultiply(img.RGBAAt(x0+px, y0+py))
			if s.A < 5 {
				continue
			}
			sumR += float64(s.R)
			sumG += float64(s.G)
			sumB += float64(s.B)
			sumA += float64(s.A)
			n++
		}
	}
	if n < 3 || sumA/float64(n) < 10 {
		return col, 0, false
	}
	f := float64(n)
	col = color.RGBA{R: clampChannel(sumR / f), G: clampChannel(sumG / f), B: clampChannel(sumB / f), A: 255}
	return col, sumA / f / 255, true
}

// paintSmudge drags the color under the start of the segment forward and
// lifts a little paint at the source.
func paintSmudge(p *painter, seg Segment, spec Spec, env Env) {
	g := measure(seg)
	if g.dist < 0.3 {
		return
	}
	pr := seg.Pressure
	rad := spec.Size * 0.6 * (0.5 + pr*0.5)
	col, avg, ok := smudgeSample(env, seg.From, max(int(math.Round(rad*0.8)), 2))
	if !ok {
		return
	}
	steps := g.steps(1.5)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c := g.at(seg, t)
		alpha := (0.25 + pr*0.35) * avg * (1 - t*0.4)
		p.circle(c, rad, radial(c, rad, col, alpha,
			raster.Stop{Offset: 0, Alpha: 1},
			raster.Stop{Offset: 0.6, Alpha: 0.6},
			raster.Stop{Offset: 1, Alpha: 0},
		))
	}

	lift := radial(seg.From, rad*0.8, color.RGBA{A: 255}, 0.03+pr*0.04,
		raster.Stop{Offset: 0, Alpha: 1},
		raster.Stop{Offset: 1, Alpha: 0},
	)
	lift.Op = raster.Erase
	p.circle(seg.From, rad*0.8, lift)
}
