package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/tile"
)

// Render draws the visible part of the canvas over dst, whose top-left pixel
// is screen (0, 0). The active stroke buffer, if any, is drawn on top at the
// alpha it will be composited with.
func (c *Canvas) Render(dst draw.Image, v View) {
	b := dst.Bounds()
	world := v.WorldRect(b.Dx(), b.Dy())
	drawTiles(dst, c.store.TilesInRect(world), c.store.Size(), v, nil)

	st := c.active
	if st == nil || st.buffer == nil {
		return
	}
	if err := c.renderSim(st); err != nil {
		logging.Logger().Warn("preview watercolor", "err", err)
	}
	a := st.profile.CompositeAlpha * float64(st.spec.Opacity) / 100
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(a * 255))})
	drawTiles(dst, st.buffer.TilesInRect(world), st.buffer.Size(), v, mask)
}

// drawTiles scales each tile onto its screen rectangle. Edges are floored so
// neighbouring tiles abut without gaps.
func drawTiles(dst draw.Image, tiles []*tile.Tile, size int, v View, mask image.Image) {
	b := dst.Bounds()
	z := v.zoom()
	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if z < 1 {
		scaler = xdraw.ApproxBiLinear
	}
	opts := &xdraw.Options{SrcMask: mask}
	for _, t := range tiles {
		x0 := math.Floor((float64(t.Origin.X) - v.OX) * z)
		y0 := math.Floor((float64(t.Origin.Y) - v.OY) * z)
		x1 := math.Floor((float64(t.Origin.X+size) - v.OX) * z)
		y1 := math.Floor((float64(t.Origin.Y+size) - v.OY) * z)
		dr := image.Rect(int(x0), int(y0), int(x1), int(y1)).Add(b.Min)
		if dr.Empty() || !dr.Overlaps(b) {
			continue
		}
		if z == 1 && mask == nil {
			draw.Draw(dst, dr, t.Image, image.Point{}, draw.Over)
			continue
		}
		scaler.Scale(dst, dr, t.Image, t.Image.Bounds(), draw.Over, opts)
	}
}
