package brush

import (
	"fmt"
	"strings"

	"github.com/example/morningpaint/internal/input"
)

// Kind selects a brush algorithm.
type Kind int

const (
	Felt Kind = iota
	Watercolor
	WatercolorSim
	InkWash
	Calligraphy
	Pastel
	Charcoal
	Oil
	Smudge
	Eraser
	Fill
)

var kindIDs = [...]string{
	Felt:          "felt",
	Watercolor:    "watercolor",
	WatercolorSim: "watercolor2",
	InkWash:       "inkwash",
	Calligraphy:   "calligraphy",
	Pastel:        "pastel",
	Charcoal:      "charcoal",
	Oil:           "oil",
	Smudge:        "smudge",
	Eraser:        "eraser",
	Fill:          "fill",
}

var kindLabels = [...]string{
	Felt:          "Felt Tip",
	Watercolor:    "Watercolor",
	WatercolorSim: "Wet Watercolor",
	InkWash:       "Ink Wash",
	Calligraphy:   "Calligraphy",
	Pastel:        "Soft Pastel",
	Charcoal:      "Charcoal",
	Oil:           "Oil Paint",
	Smudge:        "Smudge",
	Eraser:        "Eraser",
	Fill:          "Fill",
}

// Kinds lists every brush in menu order.
func Kinds() []Kind {
	out := make([]Kind, len(kindIDs))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// String returns the brush id.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindIDs) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindIDs[k]
}

// Label returns the human readable brush name.
func (k Kind) Label() string {
	if k < 0 || int(k) >= len(kindLabels) {
		return k.String()
	}
	return kindLabels[k]
}

// ParseKind maps a brush id to its Kind.
func ParseKind(s string) (Kind, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindIDs {
		if name == id {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown brush %q", s)
}

// Profile describes how a kind interacts with the stroke pipeline.
type Profile struct {
	// Buffered kinds paint into a per-stroke buffer that is composited once
	// at CompositeAlpha when the stroke ends.
	Buffered       bool
	CompositeAlpha float64
	// Segmented is false for kinds that act once per pointer-down.
	Segmented bool
	// WetEdge requests the darkened edge pass after compositing.
	WetEdge   bool
	Smoothing input.Config
}

var (
	defaultGains   = input.Gains{Min: 0.4, Max: 0.9}
	diffusiveGains = input.Gains{Min: 0.2, Max: 0.7}

	defaultSmoothing = input.Config{
		Gains:       defaultGains,
		PenSpline:   input.SplineConfig{Min: 6, Max: 18, Divisor: 1.9},
		MouseSpline: input.SplineConfig{Min: 5, Max: 14, Divisor: 2.2},
	}
	watercolorSmoothing = input.Config{
		Gains:       diffusiveGains,
		PenSpline:   input.SplineConfig{Min: 5, Max: 14, Divisor: 2.2},
		MouseSpline: input.SplineConfig{Min: 4, Max: 12, Divisor: 2.6},
	}
)

// Profile returns the pipeline settings for k.
func (k Kind) Profile() Profile {
	switch k {
	case Felt:
		return Profile{Segmented: true, Smoothing: input.Config{
			Gains:       defaultGains,
			PenSpline:   input.SplineConfig{Min: 4, Max: 12, Divisor: 2.4},
			MouseSpline: input.SplineConfig{Min: 3, Max: 10, Divisor: 2.8},
		}}
	case Watercolor:
		return Profile{Buffered: true, CompositeAlpha: 0.18, Segmented: true, WetEdge: true, Smoothing: watercolorSmoothing}
	case WatercolorSim:
		return Profile{Buffered: true, CompositeAlpha: 0.35, Segmented: true, Smoothing: watercolorSmoothing}
	case InkWash:
		return Profile{Buffered: true, CompositeAlpha: 1, Segmented: true, Smoothing: input.Config{
			Gains:       diffusiveGains,
			PenSpline:   input.SplineConfig{Min: 3, Max: 10, Divisor: 2.8},
			MouseSpline: input.SplineConfig{Min: 2, Max: 8, Divisor: 3.2},
		}}
	case Calligraphy:
		return Profile{Buffered: true, CompositeAlpha: 1, Segmented: true, Smoothing: defaultSmoothing}
	case Oil:
		return Profile{Buffered: true, CompositeAlpha: 0.88, Segmented: true, Smoothing: defaultSmoothing}
	case Pastel, Charcoal, Smudge, Eraser:
		return Profile{Segmented: true, Smoothing: defaultSmoothing}
	case Fill:
		return Profile{Smoothing: defaultSmoothing}
	}
	return Profile{Segmented: true, Smoothing: defaultSmoothing}
}
