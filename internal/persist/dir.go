package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/tile"
)

const tileExt = ".png"

// DirStore keeps one "tx,ty.png" file per tile in Dir.
type DirStore struct {
	Dir string
}

// NewDirStore returns a DirStore rooted at dir.
func NewDirStore(dir string) *DirStore { return &DirStore{Dir: dir} }

func (d *DirStore) path(c tile.Coord) string {
	return filepath.Join(d.Dir, c.String()+tileExt)
}

// SaveTiles writes or removes one file per dirty coordinate. Files are
// written to a temporary name and renamed into place.
func (d *DirStore) SaveTiles(ctx context.Context, src TileSource, dirty []tile.Coord) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create tile dir: %w", err)
	}
	for _, c := range dirty {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := encode(src, c)
		if err != nil {
			return err
		}
		path := d.path(c)
		if data == nil {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove tile %s: %w", c, err)
			}
			continue
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return fmt.Errorf("write tile %s: %w", c, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("write tile %s: %w", c, err)
		}
	}
	return nil
}

// LoadTiles reads every tile file in Dir. Files whose names are not tile keys
// are ignored.
func (d *DirStore) LoadTiles(ctx context.Context) (map[tile.Coord][]byte, error) {
	entries, err := os.ReadDir(d.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tile dir: %w", err)
	}
	var out map[tile.Coord][]byte
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, tileExt) {
			continue
		}
		c, err := tile.ParseKey(strings.TrimSuffix(name, tileExt))
		if err != nil {
			logging.Logger().Debug("ignoring file in tile dir", "name", name)
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("read tile %s: %w", c, err)
		}
		if out == nil {
			out = make(map[tile.Coord][]byte)
		}
		out[c] = data
	}
	return out, nil
}
