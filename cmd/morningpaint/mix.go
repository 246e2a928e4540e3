package main

import (
	"flag"
	"fmt"

	"github.com/example/morningpaint/internal/clipboard"
	"github.com/example/morningpaint/internal/pigment"
)

var writeClipboardText = clipboard.WriteText

type mixCmd struct {
	*root
	fs    *flag.FlagSet
	ratio int
	steps int
	copy  bool
	a, b  string
}

func (c *mixCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *mixCmd) Program() string { return c.subcommand("mix") }

func parseMixCmd(args []string, r *root) (*mixCmd, error) {
	fs := flag.NewFlagSet("mix", flag.ContinueOnError)
	cmd := &mixCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.IntVar(&cmd.ratio, "ratio", 50, "percent of the first color (0-100)")
	fs.IntVar(&cmd.steps, "steps", 0, "print a ramp of this many colors from the first to the second instead")
	fs.BoolVar(&cmd.copy, "copy", false, "copy the mixed color to the clipboard")
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.ratio < 0 || cmd.ratio > 100 {
		return nil, usageErrorf(cmd, "-ratio %d is outside 0-100", cmd.ratio)
	}
	if cmd.steps == 1 || cmd.steps < 0 {
		return nil, usageErrorf(cmd, "-steps needs at least 2 colors")
	}
	cmd.a, cmd.b = fs.Arg(0), fs.Arg(1)
	return cmd, nil
}

func (c *mixCmd) Run() error {
	a, err := pigment.ParseColor(c.a)
	if err != nil {
		return fmt.Errorf("first color %q: %w", c.a, err)
	}
	b, err := pigment.ParseColor(c.b)
	if err != nil {
		return fmt.Errorf("second color %q: %w", c.b, err)
	}
	if c.steps > 0 {
		for i := 0; i < c.steps; i++ {
			ratio := 1 - float64(i)/float64(c.steps-1)
			fmt.Fprintf(c.stdout, "%3.0f%%  %s\n", ratio*100, pigment.Hex(pigment.Mix(a, b, ratio)))
		}
		return nil
	}
	hex := pigment.Hex(pigment.MixPercent(a, b, c.ratio))
	fmt.Fprintln(c.stdout, hex)
	if c.copy {
		if err := writeClipboardText(hex); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		c.notifier.Copy(hex)
	}
	return nil
}
