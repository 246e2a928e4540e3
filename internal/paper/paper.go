// Package paper describes the surfaces painted on: a background color and an
// optional guide pattern drawn behind the tiles.
package paper

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
)

// Pattern is the guide drawn over the paper color.
type Pattern int

const (
	PatternNone Pattern = iota
	PatternDots
	PatternLines
	PatternGrid
)

var patternNames = [...]string{"none", "dots", "lines", "grid"}

func (p Pattern) String() string {
	if p < 0 || int(p) >= len(patternNames) {
		return fmt.Sprintf("Pattern(%d)", int(p))
	}
	return patternNames[p]
}

// ParsePattern accepts a pattern name. An empty string is PatternNone.
func ParsePattern(s string) (Pattern, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PatternNone, nil
	}
	for i, name := range patternNames {
		if name == s {
			return Pattern(i), nil
		}
	}
	return PatternNone, fmt.Errorf("unknown pattern %q", s)
}

const (
	// Spacing is the guide pitch in world pixels.
	Spacing = 40
	// MinScreenSpacing hides the guide once it would be this dense on screen.
	MinScreenSpacing = 8
	dotRadius        = 0.8
)

// Paper is one surface preset.
type Paper struct {
	ID         string
	Label      string
	Background color.RGBA
	Pattern    Pattern
}

var presets = []Paper{
	{"blank", "Blank", color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, PatternNone},
	{"dots", "Dot Grid", color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, PatternDots},
	{"lines", "Lined", color.RGBA{0xFF, 0xFE, 0xF8, 0xFF}, PatternLines},
	{"grid", "Grid", color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, PatternGrid},
	{"warm", "Warm Cream", color.RGBA{0xFD, 0xF8, 0xF0, 0xFF}, PatternNone},
	{"cool", "Cool Grey", color.RGBA{0xF0, 0xF2, 0xF5, 0xFF}, PatternNone},
	{"kraft", "Kraft", color.RGBA{0xD4, 0xC5, 0xA9, 0xFF}, PatternNone},
	{"midnight", "Midnight", color.RGBA{0x1A, 0x1A, 0x2E, 0xFF}, PatternNone},
}

// DefaultID names the paper used when none is configured.
const DefaultID = "dots"

// Presets returns the built-in papers.
func Presets() []Paper {
	out := make([]Paper, len(presets))
	copy(out, presets)
	return out
}

// Preset finds a built-in paper by id, ignoring case.
func Preset(id string) (Paper, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return Paper{}, false
}

// Default returns the dot grid paper.
func Default() Paper {
	p, _ := Preset(DefaultID)
	return p
}

// Dark reports whether guides should be light on this paper.
func (p Paper) Dark() bool {
	c := p.Background
	lum := 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
	return lum < 128
}

// GuideColor returns the premultiplied guide color at 8% opacity.
func (p Paper) GuideColor() color.RGBA {
	const a = 20
	if p.Dark() {
		return color.RGBA{a, a, a, a}
	}
	return color.RGBA{0, 0, 0, a}
}

// Draw fills dst with the paper and its guide for a view whose top-left
// corner is world (ox, oy) at zoom.
func (p Paper) Draw(dst draw.Image, ox, oy, zoom float64) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(p.Background), image.Point{}, draw.Src)
	if p.Pattern == PatternNone || zoom <= 0 || Spacing*zoom <= MinScreenSpacing {
		return
	}
	guide := image.NewUniform(p.GuideColor())
	startX := math.Floor(ox/Spacing) * Spacing
	startY := math.Floor(oy/Spacing) * Spacing
	endX := ox + float64(b.Dx())/zoom
	endY := oy + float64(b.Dy())/zoom
	toScreen := func(w, o float64) int { return int(math.Round((w - o) * zoom)) }

	switch p.Pattern {
	case PatternDots:
		r := max(1, int(math.Round(dotRadius*zoom)))
		for wy := startY; wy <= endY; wy += Spacing {
			for wx := startX; wx <= endX; wx += Spacing {
				x, y := b.Min.X+toScreen(wx, ox), b.Min.Y+toScreen(wy, oy)
				draw.Draw(dst, image.Rect(x-r/2, y-r/2, x-r/2+r, y-r/2+r), guide, image.Point{}, draw.Over)
			}
		}
	case PatternGrid:
		for wx := startX; wx <= endX; wx += Spacing {
			x := b.Min.X + toScreen(wx, ox)
			draw.Draw(dst, image.Rect(x, b.Min.Y, x+1, b.Max.Y), guide, image.Point{}, draw.Over)
		}
		fallthrough
	case PatternLines:
		for wy := startY; wy <= endY; wy += Spacing {
			y := b.Min.Y + toScreen(wy, oy)
			draw.Draw(dst, image.Rect(b.Min.X, y, b.Max.X, y+1), guide, image.Point{}, draw.Over)
		}
	}
}
