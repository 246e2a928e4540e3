package brush

import (
	"image"
	"image/color"
	"math"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/pigment"
	"github.com/example/morningpaint/internal/raster"
)

const oilBristles = 7

// sample reads r through env.Sampler. A nil image means nothing could be read.
func sample(env Env, r image.Rectangle) *image.RGBA {
	if env.Sampler == nil {
		return nil
	}
	img, err := env.Sampler.Sample(r)
	if err != nil {
		logging.Logger().Debug("canvas sample unavailable", "rect", r.String(), "err", err)
		return nil
	}
	return img
}

// bristlePos returns bristle b's offset across the brush, -0.5..0.5.
func bristlePos(b int) float64 {
	return float64(b)/float64(oilBristles-1) - 0.5
}

// oilPickup reads the canvas under the start of the segment. It returns the
// body color and, per bristle, the straight color under it or nil.
func oilPickup(seg Segment, g geometry, w float64, base color.RGBA, env Env) (color.RGBA, [oilBristles]*color.RGBA) {
	var bristles [oilBristles]*color.RGBA
	sr := max(int(math.Round(w*0.5)), 3)
	dim := sr * 2
	sx := int(math.Round(seg.From.X - float64(sr)))
	sy := int(math.Round(seg.From.Y - float64(sr)))
	img := sample(env, image.Rect(sx, sy, sx+dim, sy+dim))
	if img == nil {
		return base, bristles
	}
	for b := range bristles {
		pos := bristlePos(b)
		px := int(math.Round(seg.From.X + g.perpX*pos*w*0.75 - float64(sx)))
		py := int(math.Round(seg.From.Y + g.perpY*pos*w*0.75 - float64(sy)))
		px = min(max(px, 0), dim-1)
		py = min(max(py, 0), dim-1)
		c := unpremultiply(img.RGBAAt(sx+px, sy+py))
		if c.A > 10 {
			bristles[b] = &c
		}
	}
	body := base
	if c := unpremultiply(img.RGBAAt(sx+sr, sy+sr)); c.A > 10 {
		pick := math.Min(float64(c.A)/255, 0.35) * seg.Pressure * 0.4
		body = pigment.Mix(base, c, 1-pick)
	}
	return body, bristles
}

// paintOil lays a body of paint with bristle streaks that pick up color
// from the canvas, plus impasto highlights on heavy strokes.
func paintOil(p *painter, seg Segment, spec Spec, env Env) {
	g := measure(seg)
	r := env.Rand
	pr := seg.Pressure
	vel := math.Min(seg.Velocity, 1)
	w := spec.Size * 1.2 * (0.6 + pr*0.5) * (1 - vel*0.25)
	load := (0.5 + pr*0.4) * (0.6 + (1-vel)*0.4)
	base := spec.Color

	body, picked := oilPickup(seg, g, w, base, env)

	steps := g.steps(1.5)
	for i := 0; i <= steps; i++ {
		c := g.at(seg, float64(i)/float64(steps))
		p.ellipse(c, w*0.5, w*0.32, g.angle, raster.Solid(body, load*(0.85+r.Float64()*0.3)))

		for b := 0; b < oilBristles; b++ {
			if vel > 0.5 && r.Float64() < (vel-0.5)*0.5 {
				continue
			}
			off := bristlePos(b) * w * (0.75 + vel*0.25)
			wobble := jitter(r) * w * (0.06 + vel*0.08)
			at := raster.Pt(c.X+g.perpX*(off+wobble), c.Y+g.perpY*(off+wobble))

			tint := float64(b%3-1) * (15 + vel*15)
			spread := 20 + vel*16
			bc := color.RGBA{
				R: clampChannel(float64(base.R) + tint + jitter(r)*spread),
				G: clampChannel(float64(base.G) + tint*0.7 + jitter(r)*spread*0.7),
				B: clampChannel(float64(base.B) + tint*0.5 + jitter(r)*spread*0.7),
				A: 255,
			}
			if s := picked[b]; s != nil {
				pick := math.Min(float64(s.A)/255, 0.5) * pr * 0.45
				bc = pigment.Mix(bc, *s, 1-pick)
			}

			rx := w*0.12 + r.Float64()*w*0.06
			ry := w*0.04 + r.Float64()*w*0.02
			p.ellipse(at, rx, ry, g.angle+jitter(r)*0.15, raster.Solid(bc, 0.2+pr*0.25+r.Float64()*0.08))

			// Groove between inner tracks.
			if b > 0 && b < oilBristles-1 && r.Float64() > 0.4 {
				dark := color.RGBA{
					R: clampChannel(float64(bc.R) * 0.55),
					G: clampChannel(float64(bc.G) * 0.55),
					B: clampChannel(float64(bc.B) * 0.55),
					A: 255,
				}
				start := raster.Pt(seg.From.X+g.perpX*off, seg.From.Y+g.perpY*off)
				p.line(start, at, 0.6, raster.Solid(dark, 0.025+pr*0.02))
			}
		}
	}

	// Impasto: light catching on thick paint, biased toward the edges.
	if pr > 0.35 && g.dist > 2 {
		strength := (pr - 0.35) / 0.65
		n := int(math.Floor(1 + strength*3))
		for i := 0; i < n; i++ {
			c := g.at(seg, r.Float64())
			side := jitter(r) * 2
			off := side * math.Abs(side) * w * 0.35
			at := raster.Pt(
				c.X+g.perpX*off+jitter(r)*w*0.1,
				c.Y+g.perpY*off+jitter(r)*w*0.1,
			)
			lift := color.RGBA{
				R: clampChannel(float64(body.R) + (255-float64(body.R))*(0.25+r.Float64()*0.2)),
				G: clampChannel(float64(body.G) + (255-float64(body.G))*(0.25+r.Float64()*0.2)),
				B: clampChannel(float64(body.B) + (255-float64(body.B))*(0.25+r.Float64()*0.2)),
				A: 255,
			}
			alpha := 0.03 + strength*0.06*r.Float64()
			rx := w * (0.06 + r.Float64()*0.12)
			ry := w * (0.02 + r.Float64()*0.04)
			p.ellipse(at, rx, ry, g.angle+jitter(r)*0.6, raster.Solid(lift, alpha))
		}
	}

	// Sparse fragments at the outer edge.
	if g.dist > 3 && r.Float64() > 0.3 {
		side := -1.0
		if r.Float64() > 0.5 {
			side = 1
		}
		c := g.at(seg, r.Float64())
		d := w*0.38 + r.Float64()*w*0.18
		at := raster.Pt(c.X+g.perpX*side*d, c.Y+g.perpY*side*d)
		if gr := env.Grain.At(at.X, at.Y); gr > 0.4 {
			p.ellipse(at, 1.5+r.Float64()*2, 0.5+r.Float64(), g.angle, raster.Solid(body, 0.06*gr*pr))
		}
	}
}
