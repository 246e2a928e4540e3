// Package input turns raw pointer samples into smooth, dense stroke segments.
package input

import (
	"math"
	"time"
)

// Pointer identifies the kind of device that produced a sample.
type Pointer int

const (
	PointerOther Pointer = iota
	PointerPen
)

// String returns the pointer name used in scripts and logs.
func (p Pointer) String() string {
	if p == PointerPen {
		return "pen"
	}
	return "mouse"
}

// ParsePointer maps "pen" to PointerPen and anything else to PointerOther.
func ParsePointer(s string) Pointer {
	if s == "pen" {
		return PointerPen
	}
	return PointerOther
}

// Sample is one raw pointer event in world coordinates.
type Sample struct {
	X, Y float64
	// Pressure is only meaningful when HasPressure is set.
	Pressure    float64
	HasPressure bool
	Pointer     Pointer
	// Time is the offset from the start of the stroke. Zero on every
	// sample means timestamps are unavailable.
	Time time.Duration
}

type curvePoint struct{ in, out float64 }

var pressureCurve = []curvePoint{
	{0, 0},
	{0.1, 0.2},
	{0.3, 0.42},
	{0.5, 0.62},
	{0.75, 0.86},
	{1, 1},
}

// MapPressure applies the pen response curve. Light touches are boosted and
// the top end is linear. Values outside [0,1] pass through unchanged.
func MapPressure(raw float64) float64 {
	if raw <= 0 || raw >= 1 || math.IsNaN(raw) {
		return raw
	}
	for i := 1; i < len(pressureCurve); i++ {
		a, b := pressureCurve[i-1], pressureCurve[i]
		if raw <= b.in {
			t := (raw - a.in) / (b.in - a.in)
			return a.out + t*(b.out-a.out)
		}
	}
	return raw
}

const (
	// DefaultPressure is used for the first synthesized sample of a stroke.
	DefaultPressure = 0.7
	// synthesizedFalloff is the raw distance at which synthesized pressure
	// would reach zero before clamping.
	synthesizedFalloff = 200
	minSynthesized     = 0.2
	prevPressureWeight = 0.15
)

// PressureSource produces per-sample pressure. Pen samples are curve-mapped
// and lightly smoothed; other samples get pressure synthesized from the
// distance moved, so fast strokes thin out.
type PressureSource struct {
	prev    float64
	last    Sample
	hasLast bool
}

// Reset forgets all history.
func (p *PressureSource) Reset() { *p = PressureSource{} }

// Next returns the pressure for s.
func (p *PressureSource) Next(s Sample) float64 {
	defer func() {
		p.last = s
		p.hasLast = true
	}()
	if s.Pointer == PointerPen && s.HasPressure && s.Pressure > 0 {
		mapped := MapPressure(s.Pressure)
		p.prev = p.prev*prevPressureWeight + mapped*(1-prevPressureWeight)
		return p.prev
	}
	if !p.hasLast {
		return DefaultPressure
	}
	dist := math.Hypot(s.X-p.last.X, s.Y-p.last.Y)
	v := math.Max(minSynthesized, math.Min(1, 1-dist/synthesizedFalloff))
	p.prev = v
	return v
}
