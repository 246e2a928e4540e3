package persist

import (
	"archive/tar"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/example/morningpaint/internal/tile"
)

const (
	manifestName    = "canvas.json"
	tilePrefix      = "tiles/"
	manifestVersion = 1
)

// Manifest describes an archive.
type Manifest struct {
	Version  int       `json:"version"`
	TileSize int       `json:"tile_size"`
	Tiles    int       `json:"tiles"`
	Saved    time.Time `json:"saved"`
	Paper    string    `json:"paper,omitempty"`
}

// Archive is a zstd compressed tar holding canvas.json and tiles/tx,ty.png.
// Every save rewrites the whole file.
type Archive struct {
	Path     string
	TileSize int
	// Paper is recorded in the manifest.
	Paper string
}

// NewArchive returns an archive at path for tiles of the given size.
func NewArchive(path string, tileSize int) *Archive {
	return &Archive{Path: path, TileSize: tileSize}
}

// SaveTiles merges the dirty tiles of src into the archive.
func (a *Archive) SaveTiles(ctx context.Context, src TileSource, dirty []tile.Coord) error {
	blobs, _, err := a.read(ctx)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if blobs == nil {
		blobs = make(map[tile.Coord][]byte)
	}
	for _, c := range dirty {
		data, err := encode(src, c)
		if err != nil {
			return err
		}
		if data == nil {
			delete(blobs, c)
			continue
		}
		blobs[c] = data
	}
	return a.write(ctx, blobs)
}

// LoadTiles returns the tiles stored in the archive. A missing archive is
// empty.
func (a *Archive) LoadTiles(ctx context.Context) (map[tile.Coord][]byte, error) {
	blobs, _, err := a.read(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return blobs, err
}

// ReadManifest returns the manifest of an existing archive.
func (a *Archive) ReadManifest(ctx context.Context) (Manifest, error) {
	_, m, err := a.read(ctx)
	return m, err
}

func (a *Archive) write(ctx context.Context, blobs map[tile.Coord][]byte) error {
	if dir := filepath.Dir(a.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive dir: %w", err)
		}
	}
	f, err := os.CreateTemp(filepath.Dir(a.Path), filepath.Base(a.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	if err != nil {
		return fail(err)
	}
	tw := tar.NewWriter(enc)
	now := time.Now().UTC()
	m := Manifest{Version: manifestVersion, TileSize: a.TileSize, Tiles: len(blobs), Saved: now, Paper: a.Paper}
	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		enc.Close()
		return fail(err)
	}
	if err := writeEntry(tw, manifestName, manifest, now); err != nil {
		enc.Close()
		return fail(err)
	}
	for _, c := range sortedCoords(blobs) {
		if err := ctx.Err(); err != nil {
			enc.Close()
			return fail(err)
		}
		if err := writeEntry(tw, tilePrefix+c.String()+tileExt, blobs[c], now); err != nil {
			enc.Close()
			return fail(err)
		}
	}
	if err := tw.Close(); err != nil {
		enc.Close()
		return fail(err)
	}
	if err := enc.Close(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, a.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, mod time.Time) error {
	hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(data)), ModTime: mod, Typeflag: tar.TypeReg}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("archive %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("archive %s: %w", name, err)
	}
	return nil
}

func (a *Archive) read(ctx context.Context) (map[tile.Coord][]byte, Manifest, error) {
	var m Manifest
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, m, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, m, fmt.Errorf("open archive: %w", err)
	}
	defer dec.Close()

	var blobs map[tile.Coord][]byte
	seenManifest := false
	tr := tar.NewReader(dec)
	for {
		if err := ctx.Err(); err != nil {
			return nil, m, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, m, fmt.Errorf("read archive: %w: %v", ErrCorrupt, err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, m, fmt.Errorf("read archive %s: %w: %v", hdr.Name, ErrCorrupt, err)
		}
		switch {
		case hdr.Name == manifestName:
			if err := json.Unmarshal(data, &m); err != nil {
				return nil, m, fmt.Errorf("read manifest: %w: %v", ErrCorrupt, err)
			}
			seenManifest = true
		case strings.HasPrefix(hdr.Name, tilePrefix) && strings.HasSuffix(hdr.Name, tileExt):
			key := strings.TrimSuffix(strings.TrimPrefix(hdr.Name, tilePrefix), tileExt)
			c, err := tile.ParseKey(key)
			if err != nil {
				continue
			}
			if blobs == nil {
				blobs = make(map[tile.Coord][]byte)
			}
			blobs[c] = data
		}
	}
	if !seenManifest {
		return nil, m, fmt.Errorf("read archive: missing %s: %w", manifestName, ErrCorrupt)
	}
	if a.TileSize != 0 && m.TileSize != a.TileSize {
		return nil, m, fmt.Errorf("archive tile size %d does not match %d", m.TileSize, a.TileSize)
	}
	return blobs, m, nil
}
