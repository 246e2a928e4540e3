package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/example/morningpaint/internal/tile"
)

// ErrSampleUnavailable reports that pixels could not be read back.
var ErrSampleUnavailable = errors.New("sample unavailable")

// Surface is a world-space drawing target backed by tiles. *tile.Store
// satisfies it.
type Surface interface {
	// EnsureRect returns tiles covering r, allocating missing ones.
	EnsureRect(r image.Rectangle) ([]*tile.Tile, error)
	// TilesInRect returns existing tiles overlapping r.
	TilesInRect(r image.Rectangle) []*tile.Tile
}

// Sampler reads back world pixels.
type Sampler interface {
	// Sample returns a premultiplied copy of world rect r. The returned
	// image has bounds r.
	Sample(r image.Rectangle) (*image.RGBA, error)
}

// DefaultMaxSampleArea bounds a single Sample call.
const DefaultMaxSampleArea = 512 * 512

// StoreSampler reads from a tile store. Missing tiles read as transparent.
type StoreSampler struct {
	Store   *tile.Store
	MaxArea int
}

// NewSampler returns a StoreSampler with the default area limit.
func NewSampler(s *tile.Store) *StoreSampler {
	return &StoreSampler{Store: s, MaxArea: DefaultMaxSampleArea}
}

// Sample implements Sampler.
func (s *StoreSampler) Sample(r image.Rectangle) (*image.RGBA, error) {
	if s == nil || s.Store == nil {
		return nil, ErrSampleUnavailable
	}
	if r.Empty() {
		return nil, fmt.Errorf("sample %v: empty rect: %w", r, ErrSampleUnavailable)
	}
	limit := s.MaxArea
	if limit <= 0 {
		limit = DefaultMaxSampleArea
	}
	if r.Dx()*r.Dy() > limit {
		return nil, fmt.Errorf("sample %v: area exceeds %d: %w", r, limit, ErrSampleUnavailable)
	}
	out := image.NewRGBA(r)
	for _, t := range s.Store.TilesInRect(r) {
		wb := t.WorldBounds()
		inter := r.Intersect(wb)
		if inter.Empty() {
			continue
		}
		draw.Draw(out, inter, t.Image, inter.Min.Sub(t.Origin), draw.Src)
	}
	return out, nil
}
