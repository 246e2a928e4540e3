package input

import (
	"math"
	"time"
)

// Point is a smoothed stroke position carrying its pressure.
type Point struct {
	X, Y     float64
	Pressure float64
}

// Segment is one piece of a stroke ready for a brush.
type Segment struct {
	From, To Point
	// Velocity is normalized to [0,1].
	Velocity float64
}

// Gains bound the EMA weight given to a new raw sample.
type Gains struct {
	Min, Max float64
}

// SplineConfig controls how densely Catmull-Rom interpolation subdivides.
type SplineConfig struct {
	Min, Max int
	// Divisor is the length in pixels covered by one subdivision.
	Divisor float64
}

// Segments returns the subdivision count for a span of the given length.
func (c SplineConfig) Segments(length float64) int {
	div := c.Divisor
	if div <= 0 {
		div = 1
	}
	n := int(math.Ceil(length / div))
	if n < c.Min {
		n = c.Min
	}
	if c.Max > 0 && n > c.Max {
		n = c.Max
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Config tunes a Smoother for one brush.
type Config struct {
	Gains       Gains
	PenSpline   SplineConfig
	MouseSpline SplineConfig
}

const (
	velocityDecay     = 0.7
	velocityThreshold = 3.0
	defaultFrame      = 16 * time.Millisecond
	penGainBoost      = 0.05
	splineWindow      = 6
	bufferedPressure  = 0.5
)

// Smoother applies velocity-adaptive exponential smoothing and Catmull-Rom
// densification to one stroke. Slow movement is smoothed heavily; fast
// movement follows the raw pointer closely. Not safe for concurrent use.
type Smoother struct {
	cfg      Config
	pressure PressureSource

	seeded   bool
	ema      Point
	velocity float64
	lastTime time.Duration
	pointer  Pointer

	buf   []Point
	count int
	last  Point
}

// NewSmoother returns a smoother ready for the first sample of a stroke.
func NewSmoother(cfg Config) *Smoother {
	return &Smoother{cfg: cfg, buf: make([]Point, 0, splineWindow)}
}

// Reset prepares the smoother for a new stroke.
func (s *Smoother) Reset() {
	cfg := s.cfg
	*s = Smoother{cfg: cfg, buf: s.buf[:0]}
}

// Velocity returns the running pointer speed in pixels per millisecond.
func (s *Smoother) Velocity() float64 { return s.velocity }

// NormalizedVelocity maps Velocity onto [0,1], saturating at 3 px/ms.
func (s *Smoother) NormalizedVelocity() float64 {
	return math.Min(s.velocity/velocityThreshold, 1)
}

// Last returns the most recent smoothed point.
func (s *Smoother) Last() (Point, bool) {
	if !s.seeded {
		return Point{}, false
	}
	return s.ema, true
}

func (s *Smoother) gains() Gains {
	g := s.cfg.Gains
	if s.pointer == PointerPen {
		g.Min = math.Min(g.Min+penGainBoost, 1)
		g.Max = math.Min(g.Max+penGainBoost, 1)
	}
	return g
}

func (s *Smoother) spline() SplineConfig {
	if s.pointer == PointerPen {
		return s.cfg.PenSpline
	}
	return s.cfg.MouseSpline
}

// Add feeds one raw sample and returns the segments it completes. The first
// sample only seeds the smoother.
func (s *Smoother) Add(raw Sample) []Segment {
	pr := s.pressure.Next(raw)
	if pr <= 0 {
		pr = bufferedPressure
	}
	if !s.seeded {
		s.seeded = true
		s.pointer = raw.Pointer
		s.ema = Point{X: raw.X, Y: raw.Y, Pressure: pr}
		s.lastTime = raw.Time
		s.velocity = 0
		s.push(s.ema)
		s.last = s.ema
		return nil
	}

	dt := float64(raw.Time-s.lastTime) / float64(time.Millisecond)
	if dt <= 0 {
		dt = float64(defaultFrame) / float64(time.Millisecond)
	}
	s.lastTime = raw.Time
	speed := math.Hypot(raw.X-s.ema.X, raw.Y-s.ema.Y) / math.Max(dt, 1)
	s.velocity = s.velocity*velocityDecay + speed*(1-velocityDecay)

	g := s.gains()
	alpha := g.Min + s.NormalizedVelocity()*(g.Max-g.Min)
	s.ema = Point{
		X:        alpha*raw.X + (1-alpha)*s.ema.X,
		Y:        alpha*raw.Y + (1-alpha)*s.ema.Y,
		Pressure: pr,
	}
	s.push(s.ema)

	var out []Segment
	switch {
	case s.count < 4:
		out = s.emit(out, s.last, s.ema)
	case s.count == 4:
		// p1→p2 of the first full window was already drawn directly.
	default:
		n := len(s.buf)
		out = s.emitSpline(out, s.buf[n-4], s.buf[n-3], s.buf[n-2], s.buf[n-1])
	}
	s.last = s.ema
	return out
}

// Flush returns the final span of the stroke that the spline has not yet
// reached. Call it once before ending the stroke.
func (s *Smoother) Flush() []Segment {
	if s.count < 4 {
		return nil
	}
	n := len(s.buf)
	p3 := s.buf[n-1]
	return s.emitSpline(nil, s.buf[n-3], s.buf[n-2], p3, p3)
}

func (s *Smoother) push(p Point) {
	if len(s.buf) == splineWindow {
		copy(s.buf, s.buf[1:])
		s.buf = s.buf[:splineWindow-1]
	}
	s.buf = append(s.buf, p)
	s.count++
}

func (s *Smoother) emit(out []Segment, from, to Point) []Segment {
	if from.X == to.X && from.Y == to.Y {
		return out
	}
	return append(out, Segment{From: from, To: to, Velocity: s.NormalizedVelocity()})
}

func (s *Smoother) emitSpline(out []Segment, p0, p1, p2, p3 Point) []Segment {
	n := s.spline().Segments(math.Hypot(p2.X-p1.X, p2.Y-p1.Y))
	pts := CatmullRom(p0, p1, p2, p3, n)
	for i := 1; i < len(pts); i++ {
		out = s.emit(out, pts[i-1], pts[i])
	}
	return out
}

// CatmullRom interpolates n+1 points from p1 to p2 on the uniform Catmull-Rom
// spline through p0..p3. Pressure is interpolated alongside position.
func CatmullRom(p0, p1, p2, p3 Point, n int) []Point {
	if n < 1 {
		n = 1
	}
	out := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		out[i] = Point{
			X:        catmull(p0.X, p1.X, p2.X, p3.X, t),
			Y:        catmull(p0.Y, p1.Y, p2.Y, p3.Y, t),
			Pressure: catmull(p0.Pressure, p1.Pressure, p2.Pressure, p3.Pressure, t),
		}
	}
	return out
}

func catmull(a, b, c, d, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*b + (-a+c)*t + (2*a-5*b+4*c-d)*t2 + (-a+3*b-3*c+d)*t3)
}
