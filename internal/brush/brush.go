// Package brush implements the stylized brushes. Each brush turns one stroke
// segment into marks drawn with the raster primitives.
package brush

import (
	"errors"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/example/morningpaint/internal/grain"
	"github.com/example/morningpaint/internal/raster"
	"github.com/example/morningpaint/internal/watercolor"
)

const (
	MinSize        = 1
	MaxSize        = 200
	DefaultSize    = 8
	DefaultOpacity = 100
)

// DefaultColor is the ink used when nothing else is configured.
var DefaultColor = color.RGBA{0x1D, 0x1D, 0x1F, 0xFF}

var (
	// ErrDegenerateSegment is returned for segments whose endpoints coincide.
	ErrDegenerateSegment = errors.New("degenerate segment")
	// ErrNotSegmented is returned when Paint is called with a kind that does
	// not paint along segments.
	ErrNotSegmented = errors.New("brush does not paint segments")
	// ErrNoSimulator is returned when the simulated watercolor brush runs
	// without a simulator in its Env.
	ErrNoSimulator = errors.New("no watercolor simulator")
)

// Spec is the brush configuration of one stroke.
type Spec struct {
	Kind  Kind
	Size  float64
	Color color.RGBA
	// Opacity is a percentage, 1..100.
	Opacity int
}

// DefaultSpec returns the start-up brush.
func DefaultSpec() Spec {
	return Spec{Kind: Watercolor, Size: DefaultSize, Color: DefaultColor, Opacity: DefaultOpacity}
}

// Normalize clamps out-of-range values and forces an opaque color.
func (s Spec) Normalize() Spec {
	switch {
	case math.IsNaN(s.Size) || s.Size < MinSize:
		s.Size = MinSize
	case s.Size > MaxSize:
		s.Size = MaxSize
	}
	switch {
	case s.Opacity < 1:
		s.Opacity = 1
	case s.Opacity > 100:
		s.Opacity = 100
	}
	s.Color.A = 255
	return s
}

// Segment is one piece of a stroke in world space.
type Segment struct {
	From, To raster.Point
	Pressure float64
	// Velocity is normalized to [0,1].
	Velocity float64
}

func (s Segment) normalize() Segment {
	s.Pressure = raster.Clamp01(s.Pressure)
	s.Velocity = raster.Clamp01(s.Velocity)
	return s
}

// Env carries the per-stroke collaborators a brush may need.
type Env struct {
	// Rand drives every jitter. Seed it per stroke for reproducible output.
	Rand  *rand.Rand
	Grain *grain.Field
	// Sampler reads the permanent canvas. Nil disables pickup and smudge.
	Sampler raster.Sampler
	// Sim receives deposits of the simulated watercolor brush.
	Sim *watercolor.Simulator
}

func (e Env) withDefaults() Env {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(1, 2))
	}
	if e.Grain == nil {
		e.Grain = grain.Default()
	}
	return e
}

// Paint draws seg with spec into dst. Buffered kinds expect dst to be the
// stroke buffer and paint at full strength; direct kinds scale every deposit
// by the brush opacity.
func Paint(dst raster.Surface, seg Segment, spec Spec, env Env) error {
	if seg.From == seg.To {
		return ErrDegenerateSegment
	}
	spec = spec.Normalize()
	seg = seg.normalize()
	env = env.withDefaults()
	prof := spec.Kind.Profile()
	scale := 1.0
	if !prof.Buffered {
		scale = float64(spec.Opacity) / 100
	}
	p := &painter{dst: dst, scale: scale}
	switch spec.Kind {
	case Felt:
		paintFelt(p, seg, spec)
	case Watercolor:
		paintWatercolor(p, seg, spec, env)
	case WatercolorSim:
		if env.Sim == nil {
			return ErrNoSimulator
		}
		return env.Sim.Deposit(seg.From, seg.To, seg.Pressure, seg.Velocity, spec.Size, env.Grain)
	case InkWash:
		paintInkWash(p, seg, spec, env)
	case Calligraphy:
		paintCalligraphy(p, seg, spec)
	case Pastel:
		paintPastel(p, seg, spec, env)
	case Charcoal:
		paintCharcoal(p, seg, spec, env)
	case Oil:
		paintOil(p, seg, spec, env)
	case Smudge:
		paintSmudge(p, seg, spec, env)
	case Eraser:
		paintEraser(p, seg, spec)
	case Fill:
		return ErrNotSegmented
	default:
		return ErrNotSegmented
	}
	return p.err
}

// painter applies the direct-mode opacity scale and keeps the first error so
// brush bodies can issue marks without checking each one.
type painter struct {
	dst   raster.Surface
	scale float64
	err   error
}

func (p *painter) scaled(paint raster.Paint) (raster.Paint, bool) {
	if p.err != nil {
		return paint, false
	}
	paint.Alpha *= p.scale
	return paint, paint.Alpha > 0
}

func (p *painter) ellipse(c raster.Point, rx, ry, angle float64, paint raster.Paint) {
	if paint, ok := p.scaled(paint); ok {
		p.err = raster.FillEllipse(p.dst, c, rx, ry, angle, paint)
	}
}

func (p *painter) circle(c raster.Point, r float64, paint raster.Paint) {
	p.ellipse(c, r, r, 0, paint)
}

func (p *painter) rect(c raster.Point, w, h, angle float64, paint raster.Paint) {
	if paint, ok := p.scaled(paint); ok {
		p.err = raster.FillRect(p.dst, c, w, h, angle, paint)
	}
}

func (p *painter) roundedRect(c raster.Point, w, h, r, angle float64, paint raster.Paint) {
	if paint, ok := p.scaled(paint); ok {
		p.err = raster.FillRoundedRect(p.dst, c, w, h, r, angle, paint)
	}
}

func (p *painter) polygon(pts []raster.Point, paint raster.Paint) {
	if paint, ok := p.scaled(paint); ok {
		p.err = raster.FillPolygon(p.dst, pts, paint)
	}
}

func (p *painter) line(a, b raster.Point, width float64, paint raster.Paint) {
	if paint, ok := p.scaled(paint); ok {
		p.err = raster.StrokeLine(p.dst, a, b, width, paint)
	}
}

func (p *painter) polyline(pts []raster.Point, width float64, paint raster.Paint) {
	if paint, ok := p.scaled(paint); ok {
		p.err = raster.StrokePolyline(p.dst, pts, width, paint)
	}
}

func (p *painter) ring(c raster.Point, r, width float64, paint raster.Paint) {
	if paint, ok := p.scaled(paint); ok {
		p.err = raster.StrokeCircle(p.dst, c, r, width, paint)
	}
}

// geometry holds the values most brushes derive from a segment.
type geometry struct {
	dx, dy, dist float64
	angle        float64
	// perp is the unit normal to the segment.
	perpX, perpY float64
}

func measure(seg Segment) geometry {
	g := geometry{dx: seg.To.X - seg.From.X, dy: seg.To.Y - seg.From.Y}
	g.dist = math.Hypot(g.dx, g.dy)
	g.angle = math.Atan2(g.dy, g.dx)
	g.perpX, g.perpY = -math.Sin(g.angle), math.Cos(g.angle)
	return g
}

// at returns the point t of the way along the segment.
func (g geometry) at(seg Segment, t float64) raster.Point {
	return raster.Pt(seg.From.X+g.dx*t, seg.From.Y+g.dy*t)
}

// steps returns how many intervals of length spacing fit in the segment,
// never less than one.
func (g geometry) steps(spacing float64) int {
	n := int(math.Floor(g.dist / spacing))
	if n < 1 {
		n = 1
	}
	return n
}

// jitter returns a uniform value in [-0.5, 0.5).
func jitter(r *rand.Rand) float64 { return r.Float64() - 0.5 }

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// unpremultiply converts a sampled premultiplied pixel to straight color.
func unpremultiply(c color.RGBA) color.RGBA {
	if c.A == 0 || c.A == 255 {
		return c
	}
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(min(255, (uint32(c.R)*255+a/2)/a)),
		G: uint8(min(255, (uint32(c.G)*255+a/2)/a)),
		B: uint8(min(255, (uint32(c.B)*255+a/2)/a)),
		A: c.A,
	}
}
