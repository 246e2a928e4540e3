package main

import (
	"flag"
	"fmt"
	"sort"

	"github.com/example/morningpaint/internal/pigment"
)

type papersCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *papersCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *papersCmd) Program() string { return c.subcommand("papers") }

func parsePapersCmd(args []string, r *root) (*papersCmd, error) {
	fs := flag.NewFlagSet("papers", flag.ContinueOnError)
	cmd := &papersCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *papersCmd) Run() error {
	fmt.Fprintln(c.stdout, "available papers (* marks the active paper):")
	for _, p := range c.papers() {
		marker := " "
		if p.ID == c.paper.ID {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %-10s %-12s %-6s %s\n", marker, p.ID, p.Label, p.Pattern, pigment.Hex(p.Background))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
