package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/morningpaint/internal/script"
)

// sampleInterval spaces inline points in milliseconds, one 60Hz frame apart.
const sampleInterval = 16

type paintCmd struct {
	*root
	fs     *flag.FlagSet
	store  storeFlags
	brush  brushFlags
	script string
	ops    []script.Op
}

func (c *paintCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *paintCmd) Program() string { return c.subcommand("paint") }

func parsePaintCmd(args []string, r *root) (*paintCmd, error) {
	fs := flag.NewFlagSet("paint", flag.ContinueOnError)
	cmd := &paintCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.store.register(fs, r)
	cmd.brush.register(fs, r)
	fs.StringVar(&cmd.script, "script", "", "read operations from a script file, - for stdin")
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if cmd.script == "" {
		if fs.NArg() == 0 {
			return nil, &UsageError{of: cmd}
		}
		ops, err := parseInlineOps(fs.Args())
		if err != nil {
			return nil, usageErrorf(cmd, "%v", err)
		}
		cmd.ops = ops
	} else if fs.NArg() != 0 {
		return nil, usageErrorf(cmd, "-script cannot be combined with inline operations")
	}
	return cmd, nil
}

// parseInlineOps reads "stroke x,y[,p] x,y[,p] ...", "fill x,y", "undo" and
// "reset" words.
func parseInlineOps(args []string) ([]script.Op, error) {
	var ops []script.Op
	var cur *script.Op
	flush := func() {
		if cur != nil {
			ops = append(ops, *cur)
			cur = nil
		}
	}
	for _, a := range args {
		switch strings.ToLower(a) {
		case script.TypeStroke, script.TypeFill:
			flush()
			cur = &script.Op{Type: strings.ToLower(a)}
			continue
		case script.TypeUndo, script.TypeReset:
			flush()
			ops = append(ops, script.Op{Type: strings.ToLower(a)})
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("point %q before stroke or fill", a)
		}
		pt, err := parsePoint(a)
		if err != nil {
			return nil, err
		}
		if len(pt) == 2 {
			pt = append(pt, -1)
		}
		pt = append(pt, float64(len(cur.Points))*sampleInterval)
		cur.Points = append(cur.Points, pt)
	}
	flush()
	for i, op := range ops {
		if len(op.Points) == 0 && (op.Kind() == script.TypeStroke || op.Kind() == script.TypeFill) {
			return nil, fmt.Errorf("operation %d (%s): %w", i+1, op.Kind(), script.ErrEmptyStroke)
		}
	}
	return ops, nil
}

func parsePoint(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("point %q: want x,y or x,y,pressure", s)
	}
	pt := make([]float64, 0, 4)
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", s, err)
		}
		pt = append(pt, v)
	}
	return pt, nil
}

func (c *paintCmd) readScript() ([]script.Op, error) {
	var r io.Reader = os.Stdin
	if c.script != "-" {
		f, err := os.Open(c.script)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	ops, err := script.Read(r)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", c.script, err)
	}
	return ops, nil
}

func (c *paintCmd) Run() error {
	spec, err := c.brush.spec()
	if err != nil {
		return err
	}
	ops := c.ops
	if c.script != "" {
		if ops, err = c.readScript(); err != nil {
			return err
		}
	}
	ctx := context.Background()
	cv, st, err := c.store.load(ctx, c.root)
	if err != nil {
		return err
	}
	stats, playErr := script.Play(ctx, cv, ops, spec)
	if err := c.store.save(ctx, c.root, cv, st); err != nil {
		return err
	}
	if playErr != nil {
		return fmt.Errorf("paint: %w", playErr)
	}
	fmt.Fprintf(c.stdout, "%d strokes, %d fills, %d undos, %d resets (%d samples); %d tiles in %s\n",
		stats.Strokes, stats.Fills, stats.Undos, stats.Resets, stats.Samples, cv.Store().Len(), c.store.path)
	return nil
}
