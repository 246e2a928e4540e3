// Package export flattens a tile store onto its paper and writes it out as
// PNG or PDF.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/disintegration/imaging"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/tile"
)

const (
	// DefaultMaxDimension caps the larger side of an export.
	DefaultMaxDimension = 8192
	// DefaultBackgroundOpacity is the percent opacity of a reference image.
	DefaultBackgroundOpacity = 30
)

// ErrEmpty is returned when there is nothing painted to export.
var ErrEmpty = errors.New("canvas is empty")

// Options controls Flatten.
type Options struct {
	// Paper fills every pixel not covered by paint.
	Paper color.RGBA
	// Background is an optional reference image drawn between the paper
	// and the paint, stretched over the world rectangle BackgroundRect.
	Background     image.Image
	BackgroundRect image.Rectangle
	// BackgroundOpacity is a percent in [0, 100].
	BackgroundOpacity int
	// MaxDimension caps the larger output side. The output is scaled down
	// uniformly to fit.
	MaxDimension int
}

// DefaultOptions returns white paper, 30% background opacity and the 8192
// pixel cap.
func DefaultOptions() Options {
	return Options{
		Paper:             color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		BackgroundOpacity: DefaultBackgroundOpacity,
		MaxDimension:      DefaultMaxDimension,
	}
}

// Bounds returns the world rectangle covered by an export: the union of the
// non-empty tiles.
func Bounds(store *tile.Store) (image.Rectangle, bool) {
	r := store.Bounds()
	return r, !r.Empty()
}

// Scale returns the uniform factor that fits a w×h export in maxDim.
func Scale(w, h, maxDim int) float64 {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return math.Min(1, float64(maxDim)/float64(max(w, h)))
}

// Flatten composes the paper, the optional background image and every tile
// into one opaque image.
func Flatten(store *tile.Store, opts Options) (*image.NRGBA, error) {
	world, ok := Bounds(store)
	if !ok {
		return nil, ErrEmpty
	}
	s := Scale(world.Dx(), world.Dy(), opts.MaxDimension)
	outW := int(math.Round(float64(world.Dx()) * s))
	outH := int(math.Round(float64(world.Dy()) * s))
	if outW == 0 || outH == 0 {
		return nil, fmt.Errorf("flatten %v at scale %.4f: %w", world, s, ErrEmpty)
	}
	logging.Logger().Debug("flatten", "world", world.String(), "scale", s, "width", outW, "height", outH)

	out := imaging.New(outW, outH, opts.Paper)
	place := func(r image.Rectangle) image.Rectangle {
		return image.Rect(
			int(math.Round(float64(r.Min.X-world.Min.X)*s)),
			int(math.Round(float64(r.Min.Y-world.Min.Y)*s)),
			int(math.Round(float64(r.Max.X-world.Min.X)*s)),
			int(math.Round(float64(r.Max.Y-world.Min.Y)*s)),
		)
	}
	if opts.Background != nil && !opts.BackgroundRect.Empty() && opts.BackgroundOpacity > 0 {
		dr := place(opts.BackgroundRect)
		if !dr.Empty() {
			bg := imaging.Resize(opts.Background, dr.Dx(), dr.Dy(), imaging.Lanczos)
			out = imaging.Overlay(out, bg, dr.Min, float64(min(opts.BackgroundOpacity, 100))/100)
		}
	}
	// Tiles never overlap, so they are pasted into one full resolution layer
	// and scaled once. Scaling each tile on its own rounds every edge
	// separately and leaves seams.
	layer := imaging.New(world.Dx(), world.Dy(), color.NRGBA{})
	for _, t := range store.Tiles() {
		if t.Empty() {
			continue
		}
		layer = imaging.Paste(layer, t.Image, t.WorldBounds().Min.Sub(world.Min))
	}
	if outW != world.Dx() || outH != world.Dy() {
		layer = imaging.Resize(layer, outW, outH, imaging.Box)
	}
	return imaging.Overlay(out, layer, image.Point{}, 1), nil
}

// FileName returns the default export file name for t.
func FileName(t time.Time, ext string) string {
	return "morning-paint-" + t.Format("2006-01-02-1504") + ext
}
