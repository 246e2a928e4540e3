// Package persist saves and loads canvas tiles as PNG blobs keyed "tx,ty",
// either as one file per tile in a directory or as a single compressed
// archive.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/tile"
)

// TileSource is the read side of a tile store.
type TileSource interface {
	Get(c tile.Coord) (*tile.Tile, bool)
}

// Saver writes the dirty tiles of src. A dirty coordinate with no tile, or
// an empty one, removes the saved blob.
type Saver interface {
	SaveTiles(ctx context.Context, src TileSource, dirty []tile.Coord) error
}

// Loader returns every saved blob keyed by coordinate. Nothing saved yields a
// nil map and no error.
type Loader interface {
	LoadTiles(ctx context.Context) (map[tile.Coord][]byte, error)
}

// Store is both sides.
type Store interface {
	Saver
	Loader
}

// ErrCorrupt marks a blob or archive entry that could not be decoded.
var ErrCorrupt = errors.New("corrupt tile data")

// encode returns the PNG blob for c, or nil when c should not be stored.
func encode(src TileSource, c tile.Coord) ([]byte, error) {
	t, ok := src.Get(c)
	if !ok || t.Empty() {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := tile.EncodePNG(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore decodes blobs into store, replacing tiles at the same coordinates,
// and leaves the store with no dirty tiles. Blobs that fail to decode are
// skipped; their errors are joined into the returned error alongside the
// count of tiles restored.
func Restore(store *tile.Store, blobs map[tile.Coord][]byte) (int, error) {
	var errs []error
	n := 0
	for c, data := range blobs {
		img, err := tile.DecodePNG(bytes.NewReader(data), store.Size())
		if err != nil {
			errs = append(errs, fmt.Errorf("tile %s: %w: %v", c, ErrCorrupt, err))
			continue
		}
		if err := store.Put(c, img); err != nil {
			errs = append(errs, fmt.Errorf("tile %s: %w", c, err))
			continue
		}
		n++
	}
	store.ClearDirty()
	if len(errs) > 0 {
		logging.Logger().Warn("tiles skipped during restore", "skipped", len(errs), "restored", n)
	}
	return n, errors.Join(errs...)
}

// Save writes every dirty tile of store through s and clears the dirty set on
// success.
func Save(ctx context.Context, s Saver, store *tile.Store) error {
	dirty := store.Dirty()
	if len(dirty) == 0 {
		return nil
	}
	if err := s.SaveTiles(ctx, store, dirty); err != nil {
		return err
	}
	store.ClearDirty()
	logging.Logger().Debug("tiles saved", "count", len(dirty))
	return nil
}

// Load restores everything l holds into store.
func Load(ctx context.Context, l Loader, store *tile.Store) (int, error) {
	blobs, err := l.LoadTiles(ctx)
	if err != nil {
		return 0, err
	}
	return Restore(store, blobs)
}
