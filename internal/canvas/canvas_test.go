package canvas

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/fill"
	"github.com/example/morningpaint/internal/input"
	"github.com/example/morningpaint/internal/raster"
	"github.com/example/morningpaint/internal/tile"
)

func sample(x, y float64, i int) input.Sample {
	return input.Sample{X: x, Y: y, Pointer: input.PointerOther, Time: time.Duration(i) * 16 * time.Millisecond}
}

// drag runs one full stroke through pts.
func drag(t *testing.T, c *Canvas, spec brush.Spec, pts ...raster.Point) {
	t.Helper()
	if err := c.BeginStroke(spec, sample(pts[0].X, pts[0].Y, 0)); err != nil {
		t.Fatalf("BeginStroke: %v", err)
	}
	for i, p := range pts[1:] {
		if err := c.AddSample(sample(p.X, p.Y, i+1)); err != nil {
			t.Fatalf("AddSample: %v", err)
		}
	}
	if err := c.EndStroke(); err != nil {
		t.Fatalf("EndStroke: %v", err)
	}
}

func zigzag() []raster.Point {
	var pts []raster.Point
	for i := 0; i < 12; i++ {
		x := 20.0
		if i%2 == 1 {
			x = 100
		}
		pts = append(pts, raster.Pt(x, 60+float64(i%3)))
	}
	return pts
}

func maxAlpha(s *tile.Store) uint8 {
	var m uint8
	for _, t := range s.Tiles() {
		for i := 3; i < len(t.Image.Pix); i += 4 {
			m = max(m, t.Image.Pix[i])
		}
	}
	return m
}

func pixel(s *tile.Store, x, y int) color.RGBA {
	t, ok := s.Get(s.CoordOfPixel(x, y))
	if !ok {
		return color.RGBA{}
	}
	return t.Image.RGBAAt(x-t.Origin.X, y-t.Origin.Y)
}

func TestCompositeBoundsAlpha(t *testing.T) {
	once, many := tile.New(64), tile.New(64)
	ink := color.RGBA{R: 30, G: 60, B: 200, A: 255}
	if err := raster.FillCircle(once, raster.Pt(32, 32), 20, raster.Solid(ink, 0.5)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		if err := raster.FillCircle(many, raster.Pt(32, 32), 20, raster.Solid(ink, 0.5)); err != nil {
			t.Fatal(err)
		}
	}
	const alpha = 0.18
	const limit = uint8(46) // 0.18*255, plus one for rounding
	for name, buf := range map[string]*tile.Store{"once": once, "many": many} {
		dst := tile.New(64)
		n, err := Composite(dst, buf, alpha)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("%s: composited %d tiles", name, n)
		}
		if got := maxAlpha(dst); got > limit || got == 0 {
			t.Fatalf("%s: max alpha %d, want (0,%d]", name, got, limit)
		}
		if len(dst.Dirty()) != 1 {
			t.Fatalf("%s: dirty %v", name, dst.Dirty())
		}
	}
}

func TestCompositeIsAllOrNothing(t *testing.T) {
	dst := tile.New(32, tile.WithMaxTiles(2))
	if _, err := dst.Ensure(tile.C(0, 0)); err != nil {
		t.Fatal(err)
	}
	buf := tile.New(32)
	if err := raster.FillRect(buf, raster.Pt(48, 16), 96, 8, 0, raster.Solid(color.RGBA{R: 255, A: 255}, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := Composite(dst, buf, 1); err == nil {
		t.Fatal("expected allocation failure")
	}
	if dst.Len() != 1 {
		t.Fatalf("failed composite left %d tiles", dst.Len())
	}
	if got := maxAlpha(dst); got != 0 {
		t.Fatalf("failed composite wrote pixels (alpha %d)", got)
	}
}

func TestCompositeRejectsSizeMismatch(t *testing.T) {
	if _, err := Composite(tile.New(32), tile.New(64), 1); !errors.Is(err, ErrTileSizeMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestBufferedStrokeHasUniformCeiling(t *testing.T) {
	c := New(WithTileSize(128))
	spec := brush.Spec{Kind: brush.Oil, Size: 24, Color: color.RGBA{R: 180, G: 40, B: 20, A: 255}, Opacity: 50}
	drag(t, c, spec, zigzag()...)
	const limit = uint8(113) // 0.88*0.5*255, plus one for rounding
	if got := maxAlpha(c.Store()); got == 0 || got > limit {
		t.Fatalf("max alpha %d, want (0,%d]", got, limit)
	}
	if c.Strokes() != 1 || c.Active() {
		t.Fatalf("strokes %d active %v", c.Strokes(), c.Active())
	}
}

func TestDirectStrokeMarksDirty(t *testing.T) {
	c := New(WithTileSize(64))
	drag(t, c, brush.Spec{Kind: brush.Felt, Size: 8, Color: brush.DefaultColor, Opacity: 100},
		raster.Pt(10, 10), raster.Pt(40, 20), raster.Pt(90, 30))
	dirty := c.Store().Dirty()
	if len(dirty) != 2 {
		t.Fatalf("dirty %v, want tiles 0,0 and 1,0", dirty)
	}
}

func TestWatercolorSimStroke(t *testing.T) {
	c := New(WithTileSize(64))
	spec := brush.Spec{Kind: brush.WatercolorSim, Size: 20, Color: color.RGBA{B: 220, A: 255}, Opacity: 100}
	drag(t, c, spec, raster.Pt(10, 32), raster.Pt(20, 32), raster.Pt(30, 33), raster.Pt(40, 32), raster.Pt(50, 32))
	got := maxAlpha(c.Store())
	if got == 0 || got > 90 { // 0.35*255, plus one for rounding
		t.Fatalf("max alpha %d", got)
	}
}

func TestUndoRestoresInReverseOrder(t *testing.T) {
	c := New(WithTileSize(64))
	colors := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	var states [][]byte
	for _, col := range colors {
		states = append(states, snapshotPix(c.Store()))
		drag(t, c, brush.Spec{Kind: brush.Felt, Size: 10, Color: col, Opacity: 100},
			raster.Pt(10, 32), raster.Pt(30, 32), raster.Pt(50, 32))
	}
	if c.History().Len() != 3 || c.Strokes() != 3 {
		t.Fatalf("history %d strokes %d", c.History().Len(), c.Strokes())
	}
	for i := len(states) - 1; i >= 0; i-- {
		if !c.Undo() {
			t.Fatalf("undo %d returned false", i)
		}
		if got := snapshotPix(c.Store()); string(got) != string(states[i]) {
			t.Fatalf("undo %d did not restore the snapshot", i)
		}
	}
	if c.Undo() {
		t.Fatal("undo on empty history should be a no-op")
	}
	if c.Strokes() != 0 {
		t.Fatalf("strokes %d after undoing everything", c.Strokes())
	}
}

func snapshotPix(s *tile.Store) []byte {
	var out []byte
	for _, t := range s.Tiles() {
		out = append(out, []byte(t.Coord.String())...)
		out = append(out, t.Image.Pix...)
	}
	return out
}

func TestHistoryDepth(t *testing.T) {
	c := New(WithTileSize(32), WithHistoryDepth(2))
	for i := 0; i < 4; i++ {
		drag(t, c, brush.Spec{Kind: brush.Eraser, Size: 4, Opacity: 100}, raster.Pt(1, 1), raster.Pt(9, 9))
	}
	if c.History().Len() != 2 {
		t.Fatalf("history %d, want 2", c.History().Len())
	}
	entries := c.History().Entries()
	if entries[0].ID == entries[1].ID || entries[1].Reason != "eraser" {
		t.Fatalf("entries %+v", entries)
	}
}

func TestCancelStroke(t *testing.T) {
	c := New(WithTileSize(64))
	spec := brush.Spec{Kind: brush.Watercolor, Size: 12, Color: brush.DefaultColor, Opacity: 100}
	if err := c.BeginStroke(spec, sample(10, 10, 0)); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginStroke(spec, sample(10, 10, 0)); !errors.Is(err, ErrStrokeActive) {
		t.Fatalf("second BeginStroke err = %v", err)
	}
	for i := 1; i < 6; i++ {
		if err := c.AddSample(sample(10+float64(i)*8, 10, i)); err != nil {
			t.Fatal(err)
		}
	}
	c.CancelStroke()
	if c.Store().Len() != 0 || c.History().Len() != 0 || c.Strokes() != 0 {
		t.Fatalf("cancel left tiles=%d history=%d strokes=%d", c.Store().Len(), c.History().Len(), c.Strokes())
	}
	if err := c.EndStroke(); !errors.Is(err, ErrNoStroke) {
		t.Fatalf("EndStroke after cancel err = %v", err)
	}
}

func TestCancelDirectStrokeRollsBack(t *testing.T) {
	c := New(WithTileSize(64))
	spec := brush.Spec{Kind: brush.Felt, Size: 12, Color: brush.DefaultColor, Opacity: 100}
	if err := c.BeginStroke(spec, sample(10, 10, 0)); err != nil {
		t.Fatal(err)
	}
	if err := c.AddSample(sample(40, 10, 1)); err != nil {
		t.Fatal(err)
	}
	if maxAlpha(c.Store()) == 0 {
		t.Fatal("felt should paint directly")
	}
	c.CancelStroke()
	if maxAlpha(c.Store()) != 0 {
		t.Fatal("cancel did not roll back direct paint")
	}
}

// strokeErr runs one stroke through pts and returns the first error, which
// ends the stroke.
func strokeErr(c *Canvas, spec brush.Spec, pts ...raster.Point) error {
	if err := c.BeginStroke(spec, sample(pts[0].X, pts[0].Y, 0)); err != nil {
		return err
	}
	for i, p := range pts[1:] {
		if err := c.AddSample(sample(p.X, p.Y, i+1)); err != nil {
			return err
		}
	}
	return c.EndStroke()
}

func TestFailedStrokeLeavesNoHistory(t *testing.T) {
	c := New(WithTileSize(64), WithMaxTiles(1))
	drag(t, c, brush.Spec{Kind: brush.Felt, Size: 8, Color: brush.DefaultColor, Opacity: 100},
		raster.Pt(10, 30), raster.Pt(25, 30), raster.Pt(40, 30))
	painted := snapshotPix(c.Store())
	oil := brush.Spec{Kind: brush.Oil, Size: 16, Color: color.RGBA{R: 200, A: 255}, Opacity: 100}
	err := strokeErr(c, oil, raster.Pt(10, 40), raster.Pt(60, 40), raster.Pt(110, 40), raster.Pt(160, 40), raster.Pt(200, 40))
	if !errors.Is(err, tile.ErrAllocation) {
		t.Fatalf("oil stroke err = %v, want allocation failure", err)
	}
	if c.Active() {
		t.Fatal("failed stroke still active")
	}
	if c.History().Len() != 1 || c.Strokes() != 1 {
		t.Fatalf("history %d strokes %d, want 1 and 1", c.History().Len(), c.Strokes())
	}
	if got := snapshotPix(c.Store()); string(got) != string(painted) {
		t.Fatal("failed buffered stroke changed the store")
	}
	if !c.Undo() {
		t.Fatal("undo returned false")
	}
	if c.Store().Len() != 0 || maxAlpha(c.Store()) != 0 {
		t.Fatalf("undo left %d tiles, want the blank canvas", c.Store().Len())
	}
}

func TestFailedDirectStrokeRollsBack(t *testing.T) {
	c := New(WithTileSize(64), WithMaxTiles(1))
	felt := brush.Spec{Kind: brush.Felt, Size: 8, Color: brush.DefaultColor, Opacity: 100}
	err := strokeErr(c, felt, raster.Pt(10, 30), raster.Pt(20, 30), raster.Pt(30, 30), raster.Pt(40, 30),
		raster.Pt(50, 30), raster.Pt(100, 30), raster.Pt(160, 30), raster.Pt(200, 30))
	if !errors.Is(err, tile.ErrAllocation) {
		t.Fatalf("felt stroke err = %v, want allocation failure", err)
	}
	if c.Store().Len() != 0 || maxAlpha(c.Store()) != 0 {
		t.Fatalf("failed direct stroke left %d tiles", c.Store().Len())
	}
	if c.History().Len() != 0 || c.Strokes() != 0 {
		t.Fatalf("history %d strokes %d", c.History().Len(), c.Strokes())
	}
}

func TestNewAlignsTileSize(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{30, 32}, {64, 64}, {0, tile.DefaultSize}} {
		if got := New(WithTileSize(tc.in)).Store().Size(); got != tc.want {
			t.Errorf("WithTileSize(%d) gave %d px tiles, want %d", tc.in, got, tc.want)
		}
	}
}

func TestReset(t *testing.T) {
	c := New(WithTileSize(64))
	if c.Reset() {
		t.Fatal("reset of an untouched canvas should be a no-op")
	}
	drag(t, c, brush.Spec{Kind: brush.Felt, Size: 10, Color: brush.DefaultColor, Opacity: 100},
		raster.Pt(10, 10), raster.Pt(40, 10))
	if !c.Reset() {
		t.Fatal("reset returned false")
	}
	if c.Store().Len() != 0 || c.Strokes() != 0 {
		t.Fatalf("reset left %d tiles, %d strokes", c.Store().Len(), c.Strokes())
	}
	if !c.Undo() || c.Store().Len() == 0 {
		t.Fatal("undo did not bring the painting back")
	}
}

func TestFillStroke(t *testing.T) {
	c := New(WithTileSize(32), WithFillOptions(fill.Options{MaxExtent: 8}))
	spec := brush.Spec{Kind: brush.Fill, Size: 1, Color: color.RGBA{G: 200, A: 255}, Opacity: 100}
	if err := c.BeginStroke(spec, sample(4, 4, 0)); err != nil {
		t.Fatal(err)
	}
	if c.Active() {
		t.Fatal("fill should not leave a stroke active")
	}
	if got := pixel(c.Store(), 4, 4); got != (color.RGBA{G: 200, A: 255}) {
		t.Fatalf("filled pixel %+v", got)
	}
	if c.Strokes() != 1 || c.History().Len() != 1 {
		t.Fatalf("strokes %d history %d", c.Strokes(), c.History().Len())
	}
	// Filling the same region with the same color changes nothing.
	res, err := c.Fill(4, 4, spec)
	if err != nil || !res.Skipped {
		t.Fatalf("res %+v err %v", res, err)
	}
	if c.History().Len() != 1 {
		t.Fatal("skipped fill pushed history")
	}
}

func TestRenderShowsStoreAndPreview(t *testing.T) {
	c := New(WithTileSize(64))
	drag(t, c, brush.Spec{Kind: brush.Felt, Size: 10, Color: color.RGBA{R: 200, A: 255}, Opacity: 100},
		raster.Pt(10, 10), raster.Pt(40, 10), raster.Pt(60, 10))
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	c.Render(dst, DefaultView())
	if dst.RGBAAt(30, 10).A == 0 {
		t.Fatal("rendered frame missing the stroke")
	}

	spec := brush.Spec{Kind: brush.InkWash, Size: 10, Color: color.RGBA{B: 200, A: 255}, Opacity: 100}
	if err := c.BeginStroke(spec, sample(10, 70, 0)); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < 12; i++ {
		if err := c.AddSample(sample(10+float64(i)*6, 70, i)); err != nil {
			t.Fatal(err)
		}
	}
	dst = image.NewRGBA(image.Rect(0, 0, 100, 100))
	c.Render(dst, DefaultView())
	previewed := false
	for x := 0; x < 100; x++ {
		previewed = previewed || dst.RGBAAt(x, 70).A != 0
	}
	if !previewed {
		t.Fatal("active buffer not previewed")
	}
	for x := 0; x < 100; x++ {
		if pixel(c.Store(), x, 70).A != 0 {
			t.Fatal("buffered stroke reached the store before EndStroke")
		}
	}
}

func TestRenderZoomed(t *testing.T) {
	c := New(WithTileSize(32))
	if err := raster.FillRect(c.Store(), raster.Pt(16, 16), 32, 32, 0, raster.Solid(color.RGBA{R: 255, A: 255}, 1)); err != nil {
		t.Fatal(err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	c.Render(dst, View{Zoom: 2})
	if dst.RGBAAt(60, 60).R != 255 || dst.RGBAAt(70, 70).A != 0 {
		t.Fatalf("zoomed render wrong: %+v %+v", dst.RGBAAt(60, 60), dst.RGBAAt(70, 70))
	}
}
