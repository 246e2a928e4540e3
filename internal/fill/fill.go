// Package fill implements a tolerance based scanline flood fill over a tile
// store. Fills read missing tiles as transparent and allocate tiles as the
// region spreads into them.
package fill

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/tile"
)

const (
	DefaultTolerance = 32
	DefaultMaxPixels = 4_000_000
	// DefaultMaxExtent is the half size of the square around the seed a fill
	// may reach.
	DefaultMaxExtent = 4096
)

// Options bound a fill. Zero fields take the defaults.
type Options struct {
	// Tolerance is the largest color distance, on a 0..255 scale, that still
	// counts as the seed region.
	Tolerance int
	MaxPixels int
	MaxExtent int
}

// DefaultOptions returns the stock limits.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, MaxPixels: DefaultMaxPixels, MaxExtent: DefaultMaxExtent}
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	if o.MaxExtent <= 0 {
		o.MaxExtent = DefaultMaxExtent
	}
	return o
}

// Result reports what a fill did.
type Result struct {
	Filled int
	// Bounds is the world rectangle of the filled pixels.
	Bounds image.Rectangle
	// Truncated is set when a pixel or extent limit stopped the fill.
	Truncated bool
	// Skipped is set when the fill color already matches the seed region.
	Skipped bool
}

// Fill floods the region connected to world pixel (x, y) with c.
func Fill(store *tile.Store, x, y int, c color.RGBA, opts Options) (Result, error) {
	opts = opts.withDefaults()
	px := &pixels{store: store}
	m := newMatcher(seedColor(px, x, y), float64(opts.Tolerance))
	paint := premultiply(c)
	if m.match(paint) {
		return Result{Skipped: true}, nil
	}

	limit := image.Rect(x-opts.MaxExtent, y-opts.MaxExtent, x+opts.MaxExtent+1, y+opts.MaxExtent+1)
	var res Result
	stack := []image.Point{{X: x, Y: y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.In(limit) || !m.match(px.at(p.X, p.Y)) {
			continue
		}
		lx, rx := p.X, p.X
		for lx-1 >= limit.Min.X && m.match(px.at(lx-1, p.Y)) {
			lx--
		}
		for rx+1 < limit.Max.X && m.match(px.at(rx+1, p.Y)) {
			rx++
		}
		if (lx == limit.Min.X && m.match(px.at(lx-1, p.Y))) ||
			(rx == limit.Max.X-1 && m.match(px.at(rx+1, p.Y))) {
			res.Truncated = true
		}
		for i := lx; i <= rx; i++ {
			if res.Filled >= opts.MaxPixels {
				res.Truncated = true
				logging.Logger().Debug("fill stopped at pixel budget", "pixels", res.Filled)
				return res, nil
			}
			if err := px.set(i, p.Y, paint); err != nil {
				return res, fmt.Errorf("fill at %d,%d: %w", i, p.Y, err)
			}
			res.Filled++
			res.Bounds = res.Bounds.Union(image.Rect(i, p.Y, i+1, p.Y+1))
		}
		for _, ny := range [2]int{p.Y - 1, p.Y + 1} {
			if ny < limit.Min.Y || ny >= limit.Max.Y {
				for i := lx; i <= rx; i++ {
					if m.match(px.at(i, ny)) {
						res.Truncated = true
						break
					}
				}
				continue
			}
			run := false
			for i := lx; i <= rx; i++ {
				ok := m.match(px.at(i, ny))
				if ok && !run {
					stack = append(stack, image.Point{X: i, Y: ny})
				}
				run = ok
			}
		}
	}
	if res.Truncated {
		logging.Logger().Debug("fill reached its extent", "pixels", res.Filled, "extent", opts.MaxExtent)
	}
	return res, nil
}

// pixels reads and writes world pixels, caching the last tile touched.
type pixels struct {
	store  *tile.Store
	last   *tile.Tile
	marked *tile.Tile
}

func (p *pixels) lookup(x, y int) *tile.Tile {
	if p.last != nil && image.Pt(x, y).In(p.last.WorldBounds()) {
		return p.last
	}
	t, ok := p.store.Get(p.store.CoordOfPixel(x, y))
	if !ok {
		return nil
	}
	p.last = t
	return t
}

func (p *pixels) at(x, y int) color.RGBA {
	t := p.lookup(x, y)
	if t == nil {
		return color.RGBA{}
	}
	return t.Image.RGBAAt(x-t.Origin.X, y-t.Origin.Y)
}

func (p *pixels) set(x, y int, c color.RGBA) error {
	t := p.lookup(x, y)
	if t == nil {
		var err error
		t, err = p.store.Ensure(p.store.CoordOfPixel(x, y))
		if err != nil {
			return err
		}
		p.last = t
	}
	if p.marked != t {
		p.store.MarkDirty(t.Coord)
		p.marked = t
	}
	t.Image.SetRGBA(x-t.Origin.X, y-t.Origin.Y, c)
	return nil
}

// seedColor averages the 3x3 premultiplied neighborhood around (x, y).
func seedColor(px *pixels, x, y int) [4]float64 {
	var sum [4]float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c := px.at(x+dx, y+dy)
			sum[0] += float64(c.R)
			sum[1] += float64(c.G)
			sum[2] += float64(c.B)
			sum[3] += float64(c.A)
		}
	}
	for i := range sum {
		sum[i] /= 9
	}
	return sum
}

const (
	// transparentSeed is the seed alpha below which the seed counts as empty
	// canvas.
	transparentSeed = 16
	clearAlpha      = 8
	maxFaintAlpha   = 48
	alphaWeight     = 0.5
)

type matcher struct {
	seed [4]float64
	tol  float64
	// transparent seeds compare straight color of faint pixels.
	transparent bool
	straight    [3]float64
	faint       float64
}

func newMatcher(seed [4]float64, tol float64) matcher {
	m := matcher{seed: seed, tol: tol}
	if seed[3] < 128 {
		m.tol = tol * 1.5
	}
	if seed[3] < transparentSeed {
		m.transparent = true
		m.faint = math.Min(m.tol, maxFaintAlpha)
		if seed[3] > 0 {
			for i := range m.straight {
				m.straight[i] = seed[i] * 255 / seed[3]
			}
		}
	}
	return m
}

func (m matcher) match(c color.RGBA) bool {
	if m.transparent {
		if c.A < clearAlpha {
			return true
		}
		if float64(c.A) > m.faint {
			return false
		}
		a := float64(c.A)
		dr := float64(c.R)*255/a - m.straight[0]
		dg := float64(c.G)*255/a - m.straight[1]
		db := float64(c.B)*255/a - m.straight[2]
		return math.Sqrt(dr*dr+dg*dg+db*db) <= m.tol
	}
	dr := float64(c.R) - m.seed[0]
	dg := float64(c.G) - m.seed[1]
	db := float64(c.B) - m.seed[2]
	da := float64(c.A) - m.seed[3]
	return math.Sqrt(dr*dr+dg*dg+db*db+alphaWeight*da*da) <= m.tol
}

// premultiply converts a straight color to the store's premultiplied form.
func premultiply(c color.RGBA) color.RGBA {
	if c.A == 255 {
		return c
	}
	a := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R)*a + 127) / 255),
		G: uint8((uint32(c.G)*a + 127) / 255),
		B: uint8((uint32(c.B)*a + 127) / 255),
		A: c.A,
	}
}
