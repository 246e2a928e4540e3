package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/pigment"
)

// brushFlags overrides the configured brush.
type brushFlags struct {
	kind    string
	size    float64
	color   string
	opacity int
}

func (b *brushFlags) register(fs *flag.FlagSet, r *root) {
	def := brush.DefaultSpec()
	if r != nil {
		def = r.config.BrushSpec()
	}
	ids := make([]string, 0, len(brush.Kinds()))
	for _, k := range brush.Kinds() {
		ids = append(ids, k.String())
	}
	fs.StringVar(&b.kind, "brush", def.Kind.String(), "brush: "+strings.Join(ids, ", "))
	fs.Float64Var(&b.size, "size", def.Size, "brush size in pixels (1-200)")
	fs.StringVar(&b.color, "color", pigment.Hex(def.Color), "paint color as a name or #RRGGBB")
	fs.IntVar(&b.opacity, "opacity", def.Opacity, "opacity percent (1-100)")
}

func (b *brushFlags) spec() (brush.Spec, error) {
	k, err := brush.ParseKind(b.kind)
	if err != nil {
		return brush.Spec{}, err
	}
	col, err := pigment.ParseColor(b.color)
	if err != nil {
		return brush.Spec{}, fmt.Errorf("color %q: %w", b.color, err)
	}
	return brush.Spec{Kind: k, Size: b.size, Color: col, Opacity: b.opacity}.Normalize(), nil
}
