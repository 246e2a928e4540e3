// Package script reads and writes stroke recordings: one JSON object per
// line, each a stroke, a fill, an undo or a reset.
package script

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/input"
	"github.com/example/morningpaint/internal/pigment"
)

const (
	TypeStroke = "stroke"
	TypeFill   = "fill"
	TypeUndo   = "undo"
	TypeReset  = "reset"
)

// maxLine bounds one recorded operation.
const maxLine = 16 << 20

var (
	// ErrEmptyStroke is returned for a stroke or fill without points.
	ErrEmptyStroke = errors.New("operation has no points")
	// ErrBadPoint is returned for a point with fewer than two values.
	ErrBadPoint = errors.New("point needs at least x and y")
)

// Op is one line of a script. Points are [x, y, pressure, ms]; pressure and
// ms are optional and a negative pressure means none was reported.
type Op struct {
	Type    string      `json:"type,omitempty"`
	Brush   string      `json:"brush,omitempty"`
	Size    float64     `json:"size,omitempty"`
	Color   string      `json:"color,omitempty"`
	Opacity int         `json:"opacity,omitempty"`
	Pointer string      `json:"pointer,omitempty"`
	Points  [][]float64 `json:"points,omitempty"`
}

// Kind returns the op type, defaulting to a stroke.
func (o Op) Kind() string {
	if o.Type == "" {
		return TypeStroke
	}
	return strings.ToLower(o.Type)
}

// Spec overlays the op's brush settings on base.
func (o Op) Spec(base brush.Spec) (brush.Spec, error) {
	spec := base
	if o.Brush != "" {
		k, err := brush.ParseKind(o.Brush)
		if err != nil {
			return brush.Spec{}, err
		}
		spec.Kind = k
	}
	if o.Kind() == TypeFill {
		spec.Kind = brush.Fill
	}
	if o.Size > 0 {
		spec.Size = o.Size
	}
	if o.Color != "" {
		c, err := pigment.ParseColor(o.Color)
		if err != nil {
			return brush.Spec{}, err
		}
		spec.Color = c
	}
	if o.Opacity > 0 {
		spec.Opacity = o.Opacity
	}
	return spec.Normalize(), nil
}

// Samples converts the points to pointer samples.
func (o Op) Samples() ([]input.Sample, error) {
	if len(o.Points) == 0 {
		return nil, ErrEmptyStroke
	}
	ptr := input.ParsePointer(o.Pointer)
	out := make([]input.Sample, 0, len(o.Points))
	for i, p := range o.Points {
		if len(p) < 2 {
			return nil, fmt.Errorf("point %d: %w", i, ErrBadPoint)
		}
		s := input.Sample{X: p[0], Y: p[1], Pointer: ptr}
		if len(p) > 2 && p[2] >= 0 {
			s.Pressure, s.HasPressure = p[2], true
		}
		if len(p) > 3 {
			s.Time = time.Duration(p[3] * float64(time.Millisecond))
		}
		out = append(out, s)
	}
	return out, nil
}

// Read parses a script. Blank lines and lines starting with # are skipped.
func Read(r io.Reader) ([]Op, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	var ops []Op
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var op Op
		if err := json.Unmarshal([]byte(line), &op); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		switch op.Kind() {
		case TypeStroke, TypeFill:
			if len(op.Points) == 0 {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrEmptyStroke)
			}
		case TypeUndo, TypeReset:
		default:
			return nil, fmt.Errorf("line %d: unknown type %q", lineNo, op.Type)
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ops, nil
}

// Write emits ops one per line.
func Write(w io.Writer, ops []Op) error {
	enc := json.NewEncoder(w)
	for i, op := range ops {
		if err := enc.Encode(op); err != nil {
			return fmt.Errorf("write op %d: %w", i, err)
		}
	}
	return nil
}
