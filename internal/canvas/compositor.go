package canvas

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/morningpaint/internal/raster"
	"github.com/example/morningpaint/internal/tile"
)

// ErrTileSizeMismatch is returned when compositing stores of different tile
// sizes.
var ErrTileSizeMismatch = errors.New("tile size mismatch")

// Composite merges every non-empty tile of buf onto dst at alpha:
// dst = buf*alpha + dst*(1 - bufAlpha*alpha). Destination tiles are all
// allocated before any pixel is written; if one allocation fails, tiles
// allocated by this call are removed again and dst is unchanged. It returns
// the number of tiles written.
func Composite(dst, buf *tile.Store, alpha float64) (int, error) {
	if dst.Size() != buf.Size() {
		return 0, fmt.Errorf("composite %d px buffer onto %d px store: %w", buf.Size(), dst.Size(), ErrTileSizeMismatch)
	}
	var src, targets []*tile.Tile
	var created []tile.Coord
	for _, t := range buf.Tiles() {
		if t.Empty() {
			continue
		}
		_, existed := dst.Get(t.Coord)
		d, err := dst.Ensure(t.Coord)
		if err != nil {
			for _, c := range created {
				dst.Delete(c)
			}
			return 0, fmt.Errorf("composite tile %s: %w", t.Coord, err)
		}
		if !existed {
			created = append(created, t.Coord)
		}
		src = append(src, t)
		targets = append(targets, d)
	}
	for i, t := range src {
		raster.Composite(targets[i].Image, t.Image, alpha)
		dst.MarkDirty(t.Coord)
	}
	return len(src), nil
}

// trackingSurface marks every tile a brush touches as dirty.
type trackingSurface struct {
	store *tile.Store
}

func (s trackingSurface) EnsureRect(r image.Rectangle) ([]*tile.Tile, error) {
	ts, err := s.store.EnsureRect(r)
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		s.store.MarkDirty(t.Coord)
	}
	return ts, nil
}

func (s trackingSurface) TilesInRect(r image.Rectangle) []*tile.Tile {
	ts := s.store.TilesInRect(r)
	for _, t := range ts {
		s.store.MarkDirty(t.Coord)
	}
	return ts
}
