package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/example/morningpaint/internal/brush"
)

type fillCmd struct {
	*root
	fs    *flag.FlagSet
	store storeFlags
	brush brushFlags
	x, y  float64
}

func (c *fillCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *fillCmd) Program() string { return c.subcommand("fill") }

func parseFillCmd(args []string, r *root) (*fillCmd, error) {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	cmd := &fillCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.store.register(fs, r)
	cmd.brush.register(fs, r)
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, &UsageError{of: cmd}
	}
	var err error
	if cmd.x, err = strconv.ParseFloat(fs.Arg(0), 64); err != nil {
		return nil, usageErrorf(cmd, "x: %v", err)
	}
	if cmd.y, err = strconv.ParseFloat(fs.Arg(1), 64); err != nil {
		return nil, usageErrorf(cmd, "y: %v", err)
	}
	return cmd, nil
}

func (c *fillCmd) Run() error {
	spec, err := c.brush.spec()
	if err != nil {
		return err
	}
	spec.Kind = brush.Fill
	ctx := context.Background()
	cv, st, err := c.store.load(ctx, c.root)
	if err != nil {
		return err
	}
	res, err := cv.Fill(c.x, c.y, spec)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintln(c.stdout, "nothing to fill: the area already has that color")
		return nil
	}
	if err := c.store.save(ctx, c.root, cv, st); err != nil {
		return err
	}
	msg := fmt.Sprintf("filled %d pixels", res.Filled)
	if res.Truncated {
		msg += " (stopped at the fill limit)"
	}
	fmt.Fprintln(c.stdout, msg)
	return nil
}
