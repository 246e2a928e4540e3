package pigment

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Named is a palette entry.
type Named struct {
	Name  string
	Color color.RGBA
}

var palette = []Named{
	{"ink", color.RGBA{0x1D, 0x1D, 0x1F, 0xFF}},
	{"umber", color.RGBA{0x5C, 0x40, 0x33, 0xFF}},
	{"ochre", color.RGBA{0x8B, 0x69, 0x14, 0xFF}},
	{"terracotta", color.RGBA{0xC8, 0x7A, 0x5A, 0xFF}},
	{"peach", color.RGBA{0xE8, 0xA0, 0x7A, 0xFF}},
	{"slate", color.RGBA{0x4A, 0x66, 0x70, 0xFF}},
	{"dusk", color.RGBA{0x6B, 0x8F, 0xA3, 0xFF}},
	{"sky", color.RGBA{0x8E, 0xB8, 0xC8, 0xFF}},
	{"sage", color.RGBA{0xA8, 0xC8, 0xB0, 0xFF}},
	{"mist", color.RGBA{0xD4, 0xE0, 0xC8, 0xFF}},
	{"vermilion", color.RGBA{0xC0, 0x39, 0x2B, 0xFF}},
	{"tangerine", color.RGBA{0xE6, 0x7E, 0x22, 0xFF}},
	{"sunflower", color.RGBA{0xF1, 0xC4, 0x0F, 0xFF}},
	{"leaf", color.RGBA{0x27, 0xAE, 0x60, 0xFF}},
	{"cobalt", color.RGBA{0x29, 0x80, 0xB9, 0xFF}},
	{"violet", color.RGBA{0x8E, 0x44, 0xAD, 0xFF}},
	{"blush", color.RGBA{0xE8, 0xA0, 0xB8, 0xFF}},
	{"silver", color.RGBA{0xBD, 0xC3, 0xC7, 0xFF}},
	{"pewter", color.RGBA{0x7F, 0x8C, 0x8D, 0xFF}},
	{"chalk", color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}},
}

// Palette returns the built-in swatches. The first entry is the default
// brush color.
func Palette() []Named {
	out := make([]Named, len(palette))
	copy(out, palette)
	return out
}

// Hex formats c as #RRGGBB.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseHex(s string) (color.RGBA, error) {
	spec := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(spec) == 3 {
		spec = string([]byte{spec[0], spec[0], spec[1], spec[1], spec[2], spec[2]})
	}
	if len(spec) != 6 && len(spec) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(spec, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	if len(spec) == 6 {
		v = v<<8 | 0xFF
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ParseColor accepts a palette name, an SVG color name or a hex value.
func ParseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	for _, entry := range palette {
		if entry.Name == spec {
			return entry.Color, nil
		}
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	if strings.HasPrefix(spec, "#") {
		return ParseHex(spec)
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}
