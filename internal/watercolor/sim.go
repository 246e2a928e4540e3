// Package watercolor runs a coarse cellular water/pigment simulation for the
// simulated watercolor brush.
//
// Each raster tile has a matching simulation field at 1/Downscale resolution.
// Deposits add water and pigment under a soft kernel; Step relaxes both
// fields with a 4-neighbour Laplacian, reading across field boundaries so
// strokes do not seam at tile edges.
package watercolor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/example/morningpaint/internal/grain"
	"github.com/example/morningpaint/internal/raster"
	"github.com/example/morningpaint/internal/tile"
)

const (
	// Downscale is the number of raster pixels per simulation cell edge.
	Downscale = 4
	// LiveSteps run after each deposit so the preview spreads while painting.
	LiveSteps = 2
	// FinalSteps run once when the stroke ends.
	FinalSteps = 24

	waterDiffusion   = 0.2
	pigmentDiffusion = 0.08
	evaporation      = 0.02

	waterDeposit   = 0.35
	pigmentDeposit = 0.25
)

// ErrAllocation reports that a simulation field could not be created.
var ErrAllocation = errors.New("simulation field allocation failed")

// ErrTileSize reports a raster tile size the cell grid cannot align with.
var ErrTileSize = errors.New("tile size must be a positive multiple of 4")

// CheckTileSize reports whether raster tiles of n pixels line up with whole
// simulation fields.
func CheckTileSize(n int) error {
	if n <= 0 || n%Downscale != 0 {
		return fmt.Errorf("tile size %d: %w", n, ErrTileSize)
	}
	return nil
}

// AlignTileSize rounds n up to the nearest size CheckTileSize accepts.
func AlignTileSize(n int) int {
	if n < Downscale {
		return Downscale
	}
	return (n + Downscale - 1) / Downscale * Downscale
}

// Field holds the water and pigment grids for one tile. Index cur selects the
// readable half of each double buffer.
type Field struct {
	Coord   tile.Coord
	cur     int
	water   [2][]float32
	pigment [2][]float32
}

func newField(c tile.Coord, size int) *Field {
	n := size * size
	f := &Field{Coord: c}
	for i := 0; i < 2; i++ {
		f.water[i] = make([]float32, n)
		f.pigment[i] = make([]float32, n)
	}
	return f
}

func (f *Field) swap() { f.cur ^= 1 }

// Option configures a Simulator.
type Option func(*Simulator)

// WithMaxFields caps how many fields a stroke may allocate. Zero means no cap.
func WithMaxFields(n int) Option { return func(s *Simulator) { s.maxFields = n } }

// Simulator owns the fields of one stroke. Not safe for concurrent use.
type Simulator struct {
	rasterSize int
	size       int
	fields     map[uint64]*Field
	maxFields  int
}

// New returns a simulator matching raster tiles of rasterTileSize pixels,
// which should pass CheckTileSize. Other sizes are rounded up, so fields
// would no longer land on their tiles.
func New(rasterTileSize int, opts ...Option) *Simulator {
	size := AlignTileSize(rasterTileSize) / Downscale
	s := &Simulator{
		rasterSize: rasterTileSize,
		size:       size,
		fields:     make(map[uint64]*Field),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CellSize returns the edge length of one field in cells.
func (s *Simulator) CellSize() int { return s.size }

// Len returns the number of allocated fields.
func (s *Simulator) Len() int { return len(s.fields) }

// Reset drops every field.
func (s *Simulator) Reset() { s.fields = make(map[uint64]*Field) }

func (s *Simulator) ensure(c tile.Coord) (*Field, error) {
	if f, ok := s.fields[c.Pack()]; ok {
		return f, nil
	}
	if s.maxFields > 0 && len(s.fields) >= s.maxFields {
		return nil, fmt.Errorf("field %s: budget of %d fields reached: %w", c, s.maxFields, ErrAllocation)
	}
	f := newField(c, s.size)
	s.fields[c.Pack()] = f
	return f, nil
}

// locate splits a global cell coordinate into field and local cell.
func (s *Simulator) locate(cx, cy int) (tile.Coord, int, int) {
	c := tile.CoordOfPixel(cx, cy, s.size)
	return c, cx - int(c.X)*s.size, cy - int(c.Y)*s.size
}

// Cell returns the current water and pigment at global cell (cx, cy).
// Cells of unallocated fields read as zero.
func (s *Simulator) Cell(cx, cy int) (water, pigment float32) {
	c, lx, ly := s.locate(cx, cy)
	f, ok := s.fields[c.Pack()]
	if !ok {
		return 0, 0
	}
	i := ly*s.size + lx
	return f.water[f.cur][i], f.pigment[f.cur][i]
}

// Deposit lays water and pigment along from→to. Positions are world pixels;
// brushSize is in world pixels too. Velocity is normalized to [0,1].
func (s *Simulator) Deposit(from, to raster.Point, pressure, velocity, brushSize float64, g *grain.Field) error {
	if g == nil {
		g = grain.Default()
	}
	pressure = raster.Clamp01(pressure)
	velocity = raster.Clamp01(velocity)
	radius := math.Max(brushSize*(0.5+0.5*pressure)/Downscale, 1)
	speed := 1 - 0.5*velocity

	fx, fy := from.X/Downscale, from.Y/Downscale
	tx, ty := to.X/Downscale, to.Y/Downscale
	dist := math.Hypot(tx-fx, ty-fy)
	steps := int(math.Ceil(dist))
	if steps < 1 {
		steps = 1
	}

	// Allocate every field under the swept kernel before touching any cell.
	minX := int(math.Floor(math.Min(fx, tx) - radius))
	minY := int(math.Floor(math.Min(fy, ty) - radius))
	maxX := int(math.Ceil(math.Max(fx, tx) + radius))
	maxY := int(math.Ceil(math.Max(fy, ty) + radius))
	lo := tile.CoordOfPixel(minX, minY, s.size)
	hi := tile.CoordOfPixel(maxX, maxY, s.size)
	for cy := lo.Y; cy <= hi.Y; cy++ {
		for cx := lo.X; cx <= hi.X; cx++ {
			if _, err := s.ensure(tile.Coord{X: cx, Y: cy}); err != nil {
				return err
			}
		}
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := fx + (tx-fx)*t
		py := fy + (ty-fy)*t
		s.stamp(px, py, radius, speed, g)
	}
	return nil
}

func (s *Simulator) stamp(px, py, radius, speed float64, g *grain.Field) {
	x0 := int(math.Floor(px - radius))
	x1 := int(math.Ceil(px + radius))
	y0 := int(math.Floor(py - radius))
	y1 := int(math.Ceil(py + radius))
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			d := math.Hypot(float64(cx)+0.5-px, float64(cy)+0.5-py)
			if d >= radius {
				continue
			}
			k := 1 - d/radius
			mod := 0.7 + 0.6*g.At((float64(cx)+0.5)*Downscale, (float64(cy)+0.5)*Downscale)
			c, lx, ly := s.locate(cx, cy)
			f, ok := s.fields[c.Pack()]
			if !ok {
				continue
			}
			i := ly*s.size + lx
			w := &f.water[f.cur][i]
			p := &f.pigment[f.cur][i]
			*w = float32(math.Min(1, float64(*w)+waterDeposit*k*mod*speed))
			*p = float32(math.Min(1, float64(*p)+pigmentDeposit*k*mod*speed))
		}
	}
}

// neighbor returns the current values one cell outside f at local (lx, ly),
// which lies just beyond f's edge.
func (s *Simulator) neighbor(f *Field, lx, ly int) (float32, float32) {
	return s.Cell(int(f.Coord.X)*s.size+lx, int(f.Coord.Y)*s.size+ly)
}

// Step advances every field by one relaxation. All reads come from the
// current buffers and all writes go to the next ones, so every cell sees the
// pre-step neighbourhood; buffers swap once every field is written.
func (s *Simulator) Step() {
	n := s.size
	for _, f := range s.fields {
		wCur, pCur := f.water[f.cur], f.pigment[f.cur]
		wNext, pNext := f.water[f.cur^1], f.pigment[f.cur^1]
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				i := y*n + x
				w, p := wCur[i], pCur[i]

				var nw, np [4]float32
				if x > 0 {
					nw[0], np[0] = wCur[i-1], pCur[i-1]
				} else {
					nw[0], np[0] = s.neighbor(f, -1, y)
				}
				if x < n-1 {
					nw[1], np[1] = wCur[i+1], pCur[i+1]
				} else {
					nw[1], np[1] = s.neighbor(f, n, y)
				}
				if y > 0 {
					nw[2], np[2] = wCur[i-n], pCur[i-n]
				} else {
					nw[2], np[2] = s.neighbor(f, x, -1)
				}
				if y < n-1 {
					nw[3], np[3] = wCur[i+n], pCur[i+n]
				} else {
					nw[3], np[3] = s.neighbor(f, x, n)
				}

				lap := nw[0] + nw[1] + nw[2] + nw[3] - 4*w
				wNext[i] = (w + waterDiffusion*lap) * (1 - evaporation)

				dp := float32(0)
				for k := 0; k < 4; k++ {
					wet := w + nw[k]
					if wet > 1 {
						wet = 1
					}
					dp += pigmentDiffusion * wet * (np[k] - p)
				}
				pNext[i] = clamp01f(p + dp)
			}
		}
	}
	for _, f := range s.fields {
		f.swap()
	}
}

// Steps runs Step n times.
func (s *Simulator) Steps(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// TotalWater sums water over every field.
func (s *Simulator) TotalWater() float64 {
	var sum float64
	for _, f := range s.fields {
		for _, w := range f.water[f.cur] {
			sum += float64(w)
		}
	}
	return sum
}

// Alpha returns the visible opacity of a cell. Drier cells render more
// opaquely, which darkens edges as they dry.
func Alpha(water, pigment float32) float64 {
	return raster.Clamp01(float64(pigment) * (1.2 - 0.7*float64(water)))
}

// Render writes every field into dst at full raster resolution in color c,
// replacing whatever dst held under those fields.
func (s *Simulator) Render(dst raster.Surface, c color.RGBA) error {
	blur := Downscale / 2
	for _, f := range s.fields {
		mask, painted := s.upscale(f)
		if !painted {
			continue
		}
		mask = raster.BlurAlpha(mask, blur)
		origin := image.Pt(int(f.Coord.X)*s.rasterSize, int(f.Coord.Y)*s.rasterSize)
		r := image.Rect(0, 0, s.rasterSize, s.rasterSize).Add(origin)
		tiles, err := dst.EnsureRect(r)
		if err != nil {
			return fmt.Errorf("render field %s: %w", f.Coord, err)
		}
		for _, t := range tiles {
			if t.Origin != origin {
				continue
			}
			raster.Tint(t.Image, mask, [3]uint8{c.R, c.G, c.B})
		}
	}
	return nil
}

// upscale expands a field's alpha to raster resolution in tile-local space.
func (s *Simulator) upscale(f *Field) (*image.Alpha, bool) {
	mask := image.NewAlpha(image.Rect(0, 0, s.rasterSize, s.rasterSize))
	w, p := f.water[f.cur], f.pigment[f.cur]
	painted := false
	for cy := 0; cy < s.size; cy++ {
		for cx := 0; cx < s.size; cx++ {
			i := cy*s.size + cx
			if p[i] == 0 {
				continue
			}
			a := uint8(Alpha(w[i], p[i])*255 + 0.5)
			if a == 0 {
				continue
			}
			painted = true
			for dy := 0; dy < Downscale; dy++ {
				y := cy*Downscale + dy
				if y >= s.rasterSize {
					break
				}
				row := mask.PixOffset(cx*Downscale, y)
				for dx := 0; dx < Downscale && cx*Downscale+dx < s.rasterSize; dx++ {
					mask.Pix[row+dx] = a
				}
			}
		}
	}
	return mask, painted
}

func clamp01f(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
