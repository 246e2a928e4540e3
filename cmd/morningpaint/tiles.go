package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/example/morningpaint/internal/persist"
	"github.com/example/morningpaint/internal/tile"
)

type tilesCmd struct {
	*root
	fs    *flag.FlagSet
	store storeFlags
}

func (c *tilesCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *tilesCmd) Program() string { return c.subcommand("tiles") }

func parseTilesCmd(args []string, r *root) (*tilesCmd, error) {
	fs := flag.NewFlagSet("tiles", flag.ContinueOnError)
	cmd := &tilesCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.store.register(fs, r)
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *tilesCmd) Run() error {
	ctx := context.Background()
	st, size, err := c.store.open(ctx, c.root)
	if err != nil {
		return err
	}
	if a, ok := st.(*persist.Archive); ok {
		if m, err := a.ReadManifest(ctx); err == nil {
			fmt.Fprintf(c.stdout, "archive version %d, saved %s, paper %s\n", m.Version, m.Saved.Format("2006-01-02 15:04"), m.Paper)
		}
	}
	blobs, err := st.LoadTiles(ctx)
	if err != nil {
		return err
	}
	if len(blobs) == 0 {
		fmt.Fprintf(c.stdout, "no tiles in %s\n", c.store.path)
		return nil
	}
	coords := make([]tile.Coord, 0, len(blobs))
	for k := range blobs {
		coords = append(coords, k)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
	total := 0
	for _, k := range coords {
		fmt.Fprintf(c.stdout, "%-12s origin %d,%d  %d bytes\n", k, int(k.X)*size, int(k.Y)*size, len(blobs[k]))
		total += len(blobs[k])
	}
	fmt.Fprintf(c.stdout, "%d tiles of %dpx, %d bytes\n", len(coords), size, total)
	return nil
}
