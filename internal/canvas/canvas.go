// Package canvas is the painting engine. It owns the permanent tile store,
// runs strokes from pointer samples through the smoother and the brushes,
// composites buffered strokes, and keeps the undo history.
//
// A Canvas is not safe for concurrent use. Callers drive it from a single
// goroutine in event order.
package canvas

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/fill"
	"github.com/example/morningpaint/internal/grain"
	"github.com/example/morningpaint/internal/input"
	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/raster"
	"github.com/example/morningpaint/internal/tile"
	"github.com/example/morningpaint/internal/watercolor"
)

var (
	// ErrStrokeActive is returned by BeginStroke while a stroke is running.
	ErrStrokeActive = errors.New("stroke already active")
	// ErrNoStroke is returned when a stroke call arrives without BeginStroke.
	ErrNoStroke = errors.New("no active stroke")
)

const resetReason = "reset"

// Canvas holds the painting and the stroke in progress.
type Canvas struct {
	store    *tile.Store
	tileSize int
	maxTiles int
	grain    *grain.Field
	seed     uint64
	fillOpts fill.Options

	history *History
	strokes int
	seq     uint64

	active *stroke
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithTileSize sets the raster tile edge in pixels. Sizes that are not a
// multiple of watercolor.Downscale are rounded up.
func WithTileSize(n int) Option { return func(c *Canvas) { c.tileSize = n } }

// WithMaxTiles caps the tiles of the store and of each stroke buffer.
func WithMaxTiles(n int) Option { return func(c *Canvas) { c.maxTiles = n } }

// WithHistoryDepth sets how many undo snapshots are kept.
func WithHistoryDepth(n int) Option { return func(c *Canvas) { c.history = NewHistory(n) } }

// WithSeed seeds the per-stroke random sources.
func WithSeed(seed uint64) Option { return func(c *Canvas) { c.seed = seed } }

// WithGrain replaces the shared paper grain.
func WithGrain(g *grain.Field) Option { return func(c *Canvas) { c.grain = g } }

// WithFillOptions sets the flood fill limits.
func WithFillOptions(o fill.Options) Option { return func(c *Canvas) { c.fillOpts = o } }

// New returns an empty canvas.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		tileSize: tile.DefaultSize,
		fillOpts: fill.DefaultOptions(),
		history:  NewHistory(DefaultHistoryDepth),
		seed:     grain.DefaultSeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.grain == nil {
		c.grain = grain.Default()
	}
	if c.tileSize <= 0 {
		c.tileSize = tile.DefaultSize
	}
	if err := watercolor.CheckTileSize(c.tileSize); err != nil {
		aligned := watercolor.AlignTileSize(c.tileSize)
		logging.Logger().Warn("tile size adjusted", "err", err, "size", aligned)
		c.tileSize = aligned
	}
	c.store = tile.New(c.tileSize, tile.WithMaxTiles(c.maxTiles))
	return c
}

// Store returns the permanent tile store.
func (c *Canvas) Store() *tile.Store { return c.store }

// Strokes returns the number of finished strokes.
func (c *Canvas) Strokes() int { return c.strokes }

// History returns the undo history.
func (c *Canvas) History() *History { return c.history }

// Active reports whether a stroke is in progress.
func (c *Canvas) Active() bool { return c.active != nil }

// stroke is the state of one pointer-down to pointer-up.
type stroke struct {
	spec     brush.Spec
	profile  brush.Profile
	smoother *input.Smoother
	env      brush.Env
	target   raster.Surface
	buffer   *tile.Store
	sim      *watercolor.Simulator
	// simDirty is set when the simulator advanced since the last render.
	simDirty bool
	path     []brush.PathPoint
	segments int
}

// BeginStroke snapshots the canvas and starts a stroke at s. Fill brushes
// fill immediately and leave no stroke active.
func (c *Canvas) BeginStroke(spec brush.Spec, s input.Sample) error {
	if c.active != nil {
		return ErrStrokeActive
	}
	spec = spec.Normalize()
	prof := spec.Kind.Profile()
	if !prof.Segmented {
		_, err := c.Fill(s.X, s.Y, spec)
		return err
	}
	c.history.Capture(c.store, spec.Kind.String())
	c.seq++
	st := &stroke{
		spec:     spec,
		profile:  prof,
		smoother: input.NewSmoother(prof.Smoothing),
		env: brush.Env{
			Rand:    rand.New(rand.NewPCG(c.seed, c.seq)),
			Grain:   c.grain,
			Sampler: raster.NewSampler(c.store),
		},
	}
	if prof.Buffered {
		st.buffer = tile.New(c.store.Size(), tile.WithMaxTiles(c.maxTiles))
		st.target = st.buffer
	} else {
		st.target = trackingSurface{store: c.store}
	}
	if spec.Kind == brush.WatercolorSim {
		st.sim = watercolor.New(c.store.Size(), watercolor.WithMaxFields(c.maxTiles))
		st.env.Sim = st.sim
	}
	st.smoother.Add(s)
	c.record(st)
	c.active = st
	return nil
}

// AddSample feeds one pointer sample to the active stroke. A failed
// allocation ends the stroke and rolls the canvas back to the state before
// BeginStroke.
func (c *Canvas) AddSample(s input.Sample) error {
	st := c.active
	if st == nil {
		return ErrNoStroke
	}
	if err := c.paint(st, st.smoother.Add(s)); err != nil {
		c.abort(err)
		return err
	}
	c.record(st)
	return nil
}

// EndStroke paints the tail of the stroke, composites buffered strokes onto
// the store and runs the wet edge pass.
func (c *Canvas) EndStroke() error {
	st := c.active
	if st == nil {
		return ErrNoStroke
	}
	if err := c.paint(st, st.smoother.Flush()); err != nil {
		c.abort(err)
		return err
	}
	if st.sim != nil {
		st.sim.Steps(watercolor.FinalSteps)
		st.simDirty = true
	}
	if st.buffer != nil {
		if err := c.renderSim(st); err != nil {
			c.abort(err)
			return err
		}
		alpha := st.profile.CompositeAlpha * float64(st.spec.Opacity) / 100
		n, err := Composite(c.store, st.buffer, alpha)
		if err != nil {
			c.abort(err)
			return err
		}
		logging.Logger().Debug("stroke composited", "brush", st.spec.Kind.String(), "tiles", n, "alpha", alpha)
	}
	if st.profile.WetEdge {
		if err := brush.WetEdge(trackingSurface{store: c.store}, st.path, st.spec, st.env); err != nil {
			logging.Logger().Warn("wet edge skipped", "err", err)
		}
	}
	c.strokes++
	c.active = nil
	return nil
}

// CancelStroke abandons the active stroke. Buffered strokes never touched
// the store; direct strokes are rolled back to their snapshot.
func (c *Canvas) CancelStroke() {
	if c.active == nil {
		return
	}
	c.rollback()
}

func (c *Canvas) abort(err error) {
	logging.Logger().Warn("stroke aborted", "err", err)
	c.rollback()
}

// rollback drops the active stroke and its snapshot. Composite is all or
// nothing, so only direct strokes can have touched the store.
func (c *Canvas) rollback() {
	st := c.active
	c.active = nil
	snap, ok := c.history.Pop()
	if !ok || st == nil || st.buffer != nil {
		return
	}
	if err := c.store.Replace(snap.tiles); err != nil {
		logging.Logger().Error("roll back stroke", "err", err)
	}
}

// paint draws segs. The simulator relaxes once per call rather than once per
// segment, so one pointer sample costs LiveSteps regardless of how finely the
// spline subdivided it.
func (c *Canvas) paint(st *stroke, segs []input.Segment) error {
	deposited := false
	for _, s := range segs {
		seg := brush.Segment{
			From:     raster.Pt(s.From.X, s.From.Y),
			To:       raster.Pt(s.To.X, s.To.Y),
			Pressure: s.To.Pressure,
			Velocity: s.Velocity,
		}
		err := brush.Paint(st.target, seg, st.spec, st.env)
		switch {
		case errors.Is(err, brush.ErrDegenerateSegment):
			continue
		case err != nil:
			return fmt.Errorf("paint %s segment: %w", st.spec.Kind, err)
		}
		st.segments++
		deposited = true
	}
	if deposited && st.sim != nil {
		st.sim.Steps(watercolor.LiveSteps)
		st.simDirty = true
	}
	return nil
}

// record keeps the subsampled path used by the wet edge pass.
func (c *Canvas) record(st *stroke) {
	if !st.profile.WetEdge {
		return
	}
	p, ok := st.smoother.Last()
	if !ok {
		return
	}
	pt := brush.PathPoint{Point: raster.Pt(p.X, p.Y), Pressure: p.Pressure}
	if n := len(st.path); n > 0 && st.path[n-1].Dist(pt.Point) <= st.spec.Size*0.5 {
		return
	}
	st.path = append(st.path, pt)
}

// renderSim redraws the simulator into the stroke buffer when it changed.
func (c *Canvas) renderSim(st *stroke) error {
	if st.sim == nil || !st.simDirty {
		return nil
	}
	st.simDirty = false
	if err := st.sim.Render(st.buffer, st.spec.Color); err != nil {
		return fmt.Errorf("render watercolor: %w", err)
	}
	return nil
}

// Fill flood fills from world position (x, y) with the brush color at the
// brush opacity. A fill that changes nothing leaves history untouched.
func (c *Canvas) Fill(x, y float64, spec brush.Spec) (fill.Result, error) {
	if c.active != nil {
		return fill.Result{}, ErrStrokeActive
	}
	spec = spec.Normalize()
	col := spec.Color
	col.A = uint8(spec.Opacity * 255 / 100)
	snap := c.history.Capture(c.store, brush.Fill.String())
	res, err := fill.Fill(c.store, floorInt(x), floorInt(y), col, c.fillOpts)
	if err != nil {
		return res, fmt.Errorf("fill: %w", err)
	}
	if res.Skipped {
		c.history.Pop()
		logging.Logger().Debug("fill skipped", "snapshot", snap.ID.String())
		return res, nil
	}
	if res.Truncated {
		logging.Logger().Info("fill truncated", "pixels", res.Filled)
	}
	c.strokes++
	return res, nil
}

// Undo restores the newest snapshot. It reports false when the history is
// empty. During a stroke it cancels that stroke instead.
func (c *Canvas) Undo() bool {
	if c.active != nil {
		c.CancelStroke()
		return true
	}
	snap, ok := c.history.Pop()
	if !ok {
		return false
	}
	if err := c.store.Replace(snap.tiles); err != nil {
		logging.Logger().Error("undo", "err", err)
		return false
	}
	c.strokes = max(0, c.strokes-1)
	return true
}

// Reset clears the canvas after taking a snapshot so it can be undone. An
// untouched canvas is left alone and false is returned.
func (c *Canvas) Reset() bool {
	c.CancelStroke()
	if c.strokes == 0 && c.store.Len() == 0 {
		return false
	}
	c.history.Capture(c.store, resetReason)
	c.store.Clear()
	c.strokes = 0
	return true
}

// Spec returns the brush of the active stroke.
func (c *Canvas) Spec() (brush.Spec, bool) {
	if c.active == nil {
		return brush.Spec{}, false
	}
	return c.active.spec, true
}

func floorInt(v float64) int { return int(math.Floor(v)) }
