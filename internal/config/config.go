// Package config reads the rc file and environment that set the painter's
// defaults.
package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/canvas"
	"github.com/example/morningpaint/internal/export"
	"github.com/example/morningpaint/internal/paper"
	"github.com/example/morningpaint/internal/pigment"
	"github.com/example/morningpaint/internal/tile"
)

// Notify holds notification settings.
type Notify struct {
	Save   bool
	Export bool
	Copy   bool
}

// Brush holds the brush used when a command names none.
type Brush struct {
	Kind    brush.Kind
	Size    float64
	Color   color.RGBA
	Opacity int
}

// Export holds flattening defaults.
type Export struct {
	MaxDimension      int
	BackgroundOpacity int
}

// Config holds the application configuration.
type Config struct {
	Paper    string
	SaveDir  string
	TileSize int
	History  int
	Seed     uint64
	Brush    Brush
	Export   Export
	Notify   Notify
	Papers   map[string]paper.Paper
}

// New creates a new Config with defaults.
func New() *Config {
	spec := brush.DefaultSpec()
	return &Config{
		Paper:    paper.DefaultID,
		TileSize: tile.DefaultSize,
		History:  canvas.DefaultHistoryDepth,
		Brush: Brush{
			Kind:    spec.Kind,
			Size:    spec.Size,
			Color:   spec.Color,
			Opacity: spec.Opacity,
		},
		Export: Export{
			MaxDimension:      export.DefaultMaxDimension,
			BackgroundOpacity: export.DefaultBackgroundOpacity,
		},
		Papers: make(map[string]paper.Paper),
	}
}

// BrushSpec returns the configured brush.
func (c *Config) BrushSpec() brush.Spec {
	return brush.Spec{Kind: c.Brush.Kind, Size: c.Brush.Size, Color: c.Brush.Color, Opacity: c.Brush.Opacity}.Normalize()
}

// CanvasOptions returns the canvas settings.
func (c *Config) CanvasOptions() []canvas.Option {
	opts := []canvas.Option{canvas.WithTileSize(c.TileSize), canvas.WithHistoryDepth(c.History)}
	if c.Seed != 0 {
		opts = append(opts, canvas.WithSeed(c.Seed))
	}
	return opts
}

// ExportOptions returns flatten options on the configured paper.
func (c *Config) ExportOptions(p paper.Paper) export.Options {
	opts := export.DefaultOptions()
	opts.Paper = p.Background
	opts.MaxDimension = c.Export.MaxDimension
	opts.BackgroundOpacity = c.Export.BackgroundOpacity
	return opts
}

// PaperLoader returns a paper loader aware of the custom papers.
func (c *Config) PaperLoader() *paper.Loader {
	l := paper.NewLoader()
	l.Custom = c.Papers
	return l
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Paper != "" {
		fmt.Fprintf(&sb, "paper = %s\n", c.Paper)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "tile_size = %d\n", c.TileSize)
	fmt.Fprintf(&sb, "history = %d\n", c.History)
	if c.Seed != 0 {
		fmt.Fprintf(&sb, "seed = %d\n", c.Seed)
	}
	sb.WriteString("\n")

	sb.WriteString("[brush]\n")
	fmt.Fprintf(&sb, "kind = %s\n", c.Brush.Kind)
	fmt.Fprintf(&sb, "size = %g\n", c.Brush.Size)
	fmt.Fprintf(&sb, "color = %s\n", pigment.Hex(c.Brush.Color))
	fmt.Fprintf(&sb, "opacity = %d\n", c.Brush.Opacity)
	sb.WriteString("\n")

	sb.WriteString("[export]\n")
	fmt.Fprintf(&sb, "max_dimension = %d\n", c.Export.MaxDimension)
	fmt.Fprintf(&sb, "background_opacity = %d\n", c.Export.BackgroundOpacity)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var names []string
	for name := range c.Papers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&sb, "[paper.%s]\n", name)
		p := c.Papers[name]
		p.ID = name
		sb.WriteString(p.String())
		sb.WriteString("\n")
	}

	return sb.String()
}
