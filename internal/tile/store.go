// Package tile implements the sparse tile store backing the infinite canvas.
//
// A Store maps integer tile coordinates to fixed-size RGBA rasters. Tiles are
// allocated on first write and never implicitly removed. The store is not safe
// for concurrent mutation; callers serialize writes.
package tile

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sort"
)

// DefaultSize is the edge length of a tile in pixels.
const DefaultSize = 2048

// ErrAllocation reports that a tile raster could not be allocated.
var ErrAllocation = errors.New("tile allocation failed")

// Tile is one square raster of the canvas.
type Tile struct {
	Coord Coord
	// Origin is the world pixel of the tile's top-left corner.
	Origin image.Point
	// Image holds premultiplied pixels with bounds (0,0)-(size,size).
	Image *image.RGBA
}

// Empty reports whether every pixel is fully transparent.
func (t *Tile) Empty() bool {
	pix := t.Image.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			return false
		}
	}
	return true
}

// WorldBounds returns the tile rectangle in world pixels.
func (t *Tile) WorldBounds() image.Rectangle {
	return t.Image.Bounds().Add(t.Origin)
}

// Allocator creates a blank raster of the given edge length.
type Allocator func(size int) (*image.RGBA, error)

func defaultAllocator(size int) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, size, size)), nil
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTiles caps the number of tiles the store may hold. Zero means no cap.
func WithMaxTiles(n int) Option { return func(s *Store) { s.maxTiles = n } }

// WithAllocator replaces the raster allocator.
func WithAllocator(fn Allocator) Option { return func(s *Store) { s.alloc = fn } }

// Store is a sparse map from tile coordinates to rasters.
type Store struct {
	size     int
	tiles    map[uint64]*Tile
	dirty    map[uint64]struct{}
	maxTiles int
	alloc    Allocator
}

// New creates an empty store whose tiles are size×size pixels.
func New(size int, opts ...Option) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	s := &Store{
		size:  size,
		tiles: make(map[uint64]*Tile),
		dirty: make(map[uint64]struct{}),
		alloc: defaultAllocator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the tile edge length.
func (s *Store) Size() int { return s.size }

// Len returns the number of allocated tiles.
func (s *Store) Len() int { return len(s.tiles) }

// Origin returns the world pixel of the top-left corner of c.
func (s *Store) Origin(c Coord) image.Point {
	return image.Pt(int(c.X)*s.size, int(c.Y)*s.size)
}

// TileBounds returns the world rectangle covered by c.
func (s *Store) TileBounds(c Coord) image.Rectangle {
	o := s.Origin(c)
	return image.Rect(o.X, o.Y, o.X+s.size, o.Y+s.size)
}

// CoordOf returns the tile containing world point (x, y).
func (s *Store) CoordOf(x, y float64) Coord { return CoordOf(x, y, s.size) }

// CoordOfPixel returns the tile containing world pixel (x, y).
func (s *Store) CoordOfPixel(x, y int) Coord { return CoordOfPixel(x, y, s.size) }

// Get returns the tile at c without allocating.
func (s *Store) Get(c Coord) (*Tile, bool) {
	t, ok := s.tiles[c.Pack()]
	return t, ok
}

// Ensure returns the tile at c, allocating a blank one when absent.
func (s *Store) Ensure(c Coord) (*Tile, error) {
	k := c.Pack()
	if t, ok := s.tiles[k]; ok {
		return t, nil
	}
	if s.maxTiles > 0 && len(s.tiles) >= s.maxTiles {
		return nil, fmt.Errorf("ensure tile %s: budget of %d tiles reached: %w", c, s.maxTiles, ErrAllocation)
	}
	img, err := s.alloc(s.size)
	if err != nil {
		return nil, fmt.Errorf("ensure tile %s: %v: %w", c, err, ErrAllocation)
	}
	if img == nil || img.Bounds().Dx() != s.size || img.Bounds().Dy() != s.size {
		return nil, fmt.Errorf("ensure tile %s: allocator returned wrong size: %w", c, ErrAllocation)
	}
	t := &Tile{Coord: c, Origin: s.Origin(c), Image: img}
	s.tiles[k] = t
	return t, nil
}

// Span returns the inclusive range of tile coordinates overlapping the world rect r.
func (s *Store) Span(r image.Rectangle) (min, max Coord) {
	min = s.CoordOfPixel(r.Min.X, r.Min.Y)
	max = s.CoordOfPixel(r.Max.X-1, r.Max.Y-1)
	return min, max
}

// EnsureRect allocates every tile overlapping r and returns them. Either all
// tiles are available or an error is returned.
func (s *Store) EnsureRect(r image.Rectangle) ([]*Tile, error) {
	if r.Empty() {
		return nil, nil
	}
	lo, hi := s.Span(r)
	var out []*Tile
	for ty := lo.Y; ty <= hi.Y; ty++ {
		for tx := lo.X; tx <= hi.X; tx++ {
			t, err := s.Ensure(Coord{X: tx, Y: ty})
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// TilesInRect returns existing tiles overlapping the world rect r, ordered by
// row then column.
func (s *Store) TilesInRect(r image.Rectangle) []*Tile {
	if r.Empty() {
		return nil
	}
	lo, hi := s.Span(r)
	var out []*Tile
	// Walk whichever is smaller: the rect's coordinate range or the map.
	area := (int64(hi.X) - int64(lo.X) + 1) * (int64(hi.Y) - int64(lo.Y) + 1)
	if area <= int64(len(s.tiles)) {
		for ty := lo.Y; ty <= hi.Y; ty++ {
			for tx := lo.X; tx <= hi.X; tx++ {
				if t, ok := s.tiles[Coord{X: tx, Y: ty}.Pack()]; ok {
					out = append(out, t)
				}
			}
		}
		return out
	}
	for _, t := range s.tiles {
		c := t.Coord
		if c.X >= lo.X && c.X <= hi.X && c.Y >= lo.Y && c.Y <= hi.Y {
			out = append(out, t)
		}
	}
	sortTiles(out)
	return out
}

// Tiles returns every tile ordered by row then column.
func (s *Store) Tiles() []*Tile {
	out := make([]*Tile, 0, len(s.tiles))
	for _, t := range s.tiles {
		out = append(out, t)
	}
	sortTiles(out)
	return out
}

// Coords returns every allocated coordinate ordered by row then column.
func (s *Store) Coords() []Coord {
	tiles := s.Tiles()
	out := make([]Coord, len(tiles))
	for i, t := range tiles {
		out[i] = t.Coord
	}
	return out
}

func sortTiles(ts []*Tile) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Coord.Y != ts[j].Coord.Y {
			return ts[i].Coord.Y < ts[j].Coord.Y
		}
		return ts[i].Coord.X < ts[j].Coord.X
	})
}

// Bounds returns the world rectangle enclosing every non-empty tile.
func (s *Store) Bounds() image.Rectangle {
	var r image.Rectangle
	for _, t := range s.tiles {
		if t.Empty() {
			continue
		}
		r = r.Union(t.WorldBounds())
	}
	return r
}

// Put installs img as the tile at c, replacing any existing tile.
func (s *Store) Put(c Coord, img *image.RGBA) error {
	if img.Bounds().Dx() != s.size || img.Bounds().Dy() != s.size {
		return fmt.Errorf("put tile %s: got %dx%d, want %dx%d", c, img.Bounds().Dx(), img.Bounds().Dy(), s.size, s.size)
	}
	if img.Bounds().Min != (image.Point{}) {
		shifted := image.NewRGBA(image.Rect(0, 0, s.size, s.size))
		draw.Draw(shifted, shifted.Bounds(), img, img.Bounds().Min, draw.Src)
		img = shifted
	}
	s.tiles[c.Pack()] = &Tile{Coord: c, Origin: s.Origin(c), Image: img}
	s.MarkDirty(c)
	return nil
}

// Delete removes the tile at c.
func (s *Store) Delete(c Coord) {
	if _, ok := s.tiles[c.Pack()]; ok {
		delete(s.tiles, c.Pack())
		s.MarkDirty(c)
	}
}

// Clear removes every tile and marks them dirty.
func (s *Store) Clear() {
	for k := range s.tiles {
		s.dirty[k] = struct{}{}
	}
	s.tiles = make(map[uint64]*Tile)
}

// Clone returns a deep copy of the store's tiles. Dirty state is not copied.
func (s *Store) Clone() *Store {
	out := &Store{
		size:     s.size,
		tiles:    make(map[uint64]*Tile, len(s.tiles)),
		dirty:    make(map[uint64]struct{}),
		maxTiles: s.maxTiles,
		alloc:    s.alloc,
	}
	for k, t := range s.tiles {
		img := &image.RGBA{
			Pix:    append([]uint8(nil), t.Image.Pix...),
			Stride: t.Image.Stride,
			Rect:   t.Image.Rect,
		}
		out.tiles[k] = &Tile{Coord: t.Coord, Origin: t.Origin, Image: img}
	}
	return out
}

// Replace takes over the tiles of other, which must share the tile size.
// Every coordinate present before or after is marked dirty.
func (s *Store) Replace(other *Store) error {
	if other.size != s.size {
		return fmt.Errorf("replace tiles: size %d does not match %d", other.size, s.size)
	}
	for k := range s.tiles {
		s.dirty[k] = struct{}{}
	}
	for k := range other.tiles {
		s.dirty[k] = struct{}{}
	}
	s.tiles = other.tiles
	other.tiles = make(map[uint64]*Tile)
	return nil
}

// MarkDirty records that c changed since the last persistence pass.
func (s *Store) MarkDirty(c Coord) { s.dirty[c.Pack()] = struct{}{} }

// Dirty returns the coordinates changed since the last ClearDirty.
func (s *Store) Dirty() []Coord {
	out := make([]Coord, 0, len(s.dirty))
	for k := range s.dirty {
		out = append(out, Unpack(k))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// ClearDirty forgets the dirty set.
func (s *Store) ClearDirty() { s.dirty = make(map[uint64]struct{}) }
