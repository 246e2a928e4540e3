package script

import (
	"context"
	"fmt"
	"time"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/canvas"
	"github.com/example/morningpaint/internal/input"
	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/pigment"
)

// Stats counts what a replay did.
type Stats struct {
	Strokes int
	Fills   int
	Undos   int
	Resets  int
	Samples int
}

// Play replays ops onto c, filling unset brush fields from base. It stops at
// the first failing op; ctx is checked between ops.
func Play(ctx context.Context, c *canvas.Canvas, ops []Op, base brush.Spec) (Stats, error) {
	var st Stats
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		switch op.Kind() {
		case TypeUndo:
			if c.Undo() {
				st.Undos++
			}
		case TypeReset:
			if c.Reset() {
				st.Resets++
			}
		default:
			n, err := playStroke(c, op, base)
			if err != nil {
				return st, fmt.Errorf("op %d: %w", i, err)
			}
			st.Samples += n
			if op.Kind() == TypeFill {
				st.Fills++
			} else {
				st.Strokes++
			}
		}
	}
	logging.Logger().Debug("script played", "strokes", st.Strokes, "fills", st.Fills, "samples", st.Samples)
	return st, nil
}

func playStroke(c *canvas.Canvas, op Op, base brush.Spec) (int, error) {
	spec, err := op.Spec(base)
	if err != nil {
		return 0, err
	}
	samples, err := op.Samples()
	if err != nil {
		return 0, err
	}
	if spec.Kind == brush.Fill {
		_, err := c.Fill(samples[0].X, samples[0].Y, spec)
		return 1, err
	}
	if err := c.BeginStroke(spec, samples[0]); err != nil {
		return 0, err
	}
	for _, s := range samples[1:] {
		if err := c.AddSample(s); err != nil {
			return 0, err
		}
	}
	return len(samples), c.EndStroke()
}

// Recorder collects live samples into ops.
type Recorder struct {
	ops     []Op
	current *Op
}

// Begin starts recording a stroke.
func (r *Recorder) Begin(spec brush.Spec, s input.Sample) {
	op := Op{
		Brush:   spec.Kind.String(),
		Size:    spec.Size,
		Color:   pigment.Hex(spec.Color),
		Opacity: spec.Opacity,
		Pointer: s.Pointer.String(),
	}
	if spec.Kind == brush.Fill {
		op.Type = TypeFill
		op.Points = [][]float64{point(s)}
		r.ops = append(r.ops, op)
		return
	}
	r.current = &op
	r.Add(s)
}

// Add records one sample of the current stroke.
func (r *Recorder) Add(s input.Sample) {
	if r.current == nil {
		return
	}
	r.current.Points = append(r.current.Points, point(s))
}

// End closes the current stroke.
func (r *Recorder) End() {
	if r.current == nil {
		return
	}
	r.ops = append(r.ops, *r.current)
	r.current = nil
}

// Cancel drops the current stroke.
func (r *Recorder) Cancel() { r.current = nil }

// Undo records an undo. An undo during a stroke cancels it, as the canvas does.
func (r *Recorder) Undo() {
	if r.current != nil {
		r.current = nil
		return
	}
	r.ops = append(r.ops, Op{Type: TypeUndo})
}

// Reset records a reset.
func (r *Recorder) Reset() {
	r.current = nil
	r.ops = append(r.ops, Op{Type: TypeReset})
}

// Ops returns the finished operations.
func (r *Recorder) Ops() []Op { return append([]Op(nil), r.ops...) }

func point(s input.Sample) []float64 {
	p := -1.0
	if s.HasPressure {
		p = s.Pressure
	}
	return []float64{s.X, s.Y, p, float64(s.Time) / float64(time.Millisecond)}
}
