package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/example/morningpaint/internal/canvas"
	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/persist"
	"github.com/example/morningpaint/internal/watercolor"
)

// archiveExt marks a store path as a single-file archive rather than a tile
// directory.
const archiveExt = ".mpaint"

const defaultStoreDir = "canvas"

// storeFlags selects where the canvas tiles live.
type storeFlags struct {
	path string
}

func (s *storeFlags) register(set *flag.FlagSet, r *root) {
	def := defaultStoreDir
	if r != nil && r.config.SaveDir != "" {
		def = r.config.SaveDir
	}
	set.StringVar(&s.path, "store", def, "tile directory, or a "+archiveExt+" archive file")
}

func (s *storeFlags) archive() bool {
	return strings.EqualFold(filepath.Ext(s.path), archiveExt)
}

// open returns the tile store and the tile size it holds. Existing archives
// keep the tile size recorded in their manifest.
func (s *storeFlags) open(ctx context.Context, r *root) (persist.Store, int, error) {
	size := r.config.TileSize
	if !s.archive() {
		return persist.NewDirStore(s.path), size, nil
	}
	a := persist.NewArchive(s.path, 0)
	a.Paper = r.paper.ID
	m, err := a.ReadManifest(ctx)
	switch {
	case err == nil:
		if err := watercolor.CheckTileSize(m.TileSize); err != nil {
			return nil, 0, fmt.Errorf("read archive %s: %w", s.path, err)
		}
		a.TileSize = m.TileSize
	case errors.Is(err, fs.ErrNotExist):
		a.TileSize = size
	default:
		return nil, 0, fmt.Errorf("read archive %s: %w", s.path, err)
	}
	return a, a.TileSize, nil
}

// load opens the store and restores its tiles into a new canvas.
func (s *storeFlags) load(ctx context.Context, r *root) (*canvas.Canvas, persist.Store, error) {
	st, size, err := s.open(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	opts := append(r.config.CanvasOptions(), canvas.WithTileSize(size))
	c := canvas.New(opts...)
	n, err := persist.Load(ctx, st, c.Store())
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	logging.Logger().Debug("canvas loaded", "store", s.path, "tiles", n)
	return c, st, nil
}

// save writes the dirty tiles back and notifies.
func (s *storeFlags) save(ctx context.Context, r *root, c *canvas.Canvas, st persist.Store) error {
	n := len(c.Store().Dirty())
	if n == 0 {
		return nil
	}
	if err := persist.Save(ctx, st, c.Store()); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	r.notifier.Save(s.path, n)
	return nil
}
