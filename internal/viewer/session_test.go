package viewer

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/canvas"
	"github.com/example/morningpaint/internal/export"
	"github.com/example/morningpaint/internal/fill"
	"github.com/example/morningpaint/internal/paper"
	"github.com/example/morningpaint/internal/persist"
	"github.com/example/morningpaint/internal/script"
)

type fakeClipboard struct {
	written image.Image
	read    image.Image
}

func (f *fakeClipboard) WriteImage(img image.Image) error { f.written = img; return nil }

func (f *fakeClipboard) ReadImage() (image.Image, error) {
	if f.read == nil {
		return nil, errors.New("empty")
	}
	return f.read, nil
}

func newSession(t *testing.T, opts ...Option) *session {
	t.Helper()
	c := canvas.New(canvas.WithTileSize(64), canvas.WithFillOptions(fill.Options{MaxExtent: 16}))
	v := New(c, opts...)
	clock := time.Unix(0, 0)
	v.session.now = func() time.Time {
		clock = clock.Add(16 * time.Millisecond)
		return clock
	}
	return v.session
}

func felt() brush.Spec {
	spec := brush.DefaultSpec()
	spec.Kind = brush.Felt
	spec.Color = color.RGBA{0x20, 0x40, 0x80, 0xFF}
	return spec
}

func stroke(s *session, pts ...[2]float64) {
	s.pointerDown(pts[0][0], pts[0][1])
	for _, p := range pts[1 : len(pts)-1] {
		s.pointerMove(p[0], p[1])
	}
	last := pts[len(pts)-1]
	s.pointerUp(last[0], last[1])
}

func TestStrokeRecordsAndSaves(t *testing.T) {
	dir := persist.NewDirStore(t.TempDir())
	rec := &script.Recorder{}
	s := newSession(t, WithBrush(felt()), WithSaver(dir), WithRecorder(rec))

	stroke(s, [2]float64{10, 10}, [2]float64{30, 12}, [2]float64{50, 20}, [2]float64{90, 30})

	assert.Equal(t, 1, s.canvas.Strokes())
	assert.Empty(t, s.canvas.Store().Dirty())
	blobs, err := dir.LoadTiles(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, blobs)

	ops := rec.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, script.TypeStroke, ops[0].Kind())
	assert.Len(t, ops[0].Points, 4)
}

func TestPointerUsesView(t *testing.T) {
	s := newSession(t, WithBrush(felt()))
	s.view = canvas.View{OX: 1000, OY: 1000, Zoom: 2}
	stroke(s, [2]float64{0, 0}, [2]float64{20, 0}, [2]float64{40, 4})

	r := s.canvas.Store().Bounds()
	assert.True(t, r.Min.X >= 960, "bounds %v", r)
	assert.True(t, r.Min.Y >= 960, "bounds %v", r)
}

func TestUndoAndReset(t *testing.T) {
	rec := &script.Recorder{}
	s := newSession(t, WithBrush(felt()), WithRecorder(rec))
	stroke(s, [2]float64{10, 10}, [2]float64{40, 10})
	s.undo()
	assert.Zero(t, s.canvas.Store().Len())

	s.undo()
	assert.Equal(t, "nothing to undo", s.message)

	stroke(s, [2]float64{10, 10}, [2]float64{40, 10})
	s.reset()
	assert.Zero(t, s.canvas.Store().Len())
	s.undo()
	assert.NotZero(t, s.canvas.Store().Len())

	var types []string
	for _, op := range rec.Ops() {
		types = append(types, op.Kind())
	}
	assert.Equal(t, []string{script.TypeStroke, script.TypeUndo, script.TypeStroke, script.TypeReset, script.TypeUndo}, types)
}

func TestCancelDropsStroke(t *testing.T) {
	s := newSession(t, WithBrush(felt()))
	s.pointerDown(10, 10)
	s.pointerMove(40, 10)
	s.cancel()
	assert.False(t, s.canvas.Active())
	assert.Zero(t, s.canvas.Store().Len())
	s.pointerUp(60, 10)
	assert.Zero(t, s.canvas.Strokes())
}

func TestFillOnPointerDown(t *testing.T) {
	spec := felt()
	spec.Kind = brush.Fill
	s := newSession(t, WithBrush(spec))
	s.pointerDown(5, 5)
	assert.False(t, s.painting)
	assert.Equal(t, 1, s.canvas.Strokes())
}

func TestPanAndZoom(t *testing.T) {
	s := newSession(t)
	s.startPan(100, 100)
	s.pointerMove(80, 70)
	s.pointerUp(80, 70)
	assert.InDelta(t, 20, s.view.OX, 1e-9)
	assert.InDelta(t, 30, s.view.OY, 1e-9)

	before := s.view.ScreenToWorld(200, 150)
	s.zoom(200, 150, true)
	after := s.view.ScreenToWorld(200, 150)
	assert.InDelta(t, 1.08, s.view.Zoom, 1e-9)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.Zero(t, s.canvas.Store().Len())
}

func TestShortcuts(t *testing.T) {
	s := newSession(t)
	quit := false
	k := newKeymap()
	bindSession(k, s, func() { quit = true })

	assert.True(t, k.handle(key.Event{Rune: '1', Direction: key.DirPress}))
	assert.Equal(t, brush.Felt, s.spec.Kind)
	assert.True(t, k.handle(key.Event{Rune: 'f', Direction: key.DirPress}))
	assert.Equal(t, brush.Fill, s.spec.Kind)

	size := s.spec.Size
	k.handle(key.Event{Rune: ']', Direction: key.DirPress})
	assert.Equal(t, size+sizeStep, s.spec.Size)

	assert.False(t, k.handle(key.Event{Rune: 'q', Direction: key.DirPress}))
	assert.True(t, k.handle(key.Event{Rune: 'Q', Modifiers: key.ModControl | key.ModShift, Direction: key.DirPress}))
	assert.True(t, quit)
	assert.False(t, k.handle(key.Event{Rune: 'p', Direction: key.DirRelease}))
}

func TestCyclePaper(t *testing.T) {
	s := newSession(t)
	presets := paper.Presets()
	require.Greater(t, len(presets), 1)
	s.paper = presets[len(presets)-1]
	s.cyclePaper()
	assert.Equal(t, presets[0].ID, s.paper.ID)
	assert.Equal(t, presets[0].Background, s.exportOpts.Paper)
}

func TestCopyAndPaste(t *testing.T) {
	ref := image.NewRGBA(image.Rect(0, 0, 20, 10))
	cb := &fakeClipboard{read: ref}
	s := newSession(t, WithBrush(felt()), WithClipboard(cb))

	require.ErrorIs(t, s.copyImage(), export.ErrEmpty)

	stroke(s, [2]float64{10, 10}, [2]float64{40, 10})
	require.NoError(t, s.copyImage())
	require.NotNil(t, cb.written)

	s.view = canvas.View{OX: 5, OY: 7, Zoom: 1}
	require.NoError(t, s.pasteReference())
	assert.Equal(t, image.Rect(5, 7, 25, 17), s.ref.rect)
}

func TestExportWritesFile(t *testing.T) {
	s := newSession(t, WithBrush(felt()), WithExport(export.DefaultOptions(), t.TempDir()))
	stroke(s, [2]float64{10, 10}, [2]float64{40, 10})
	path, err := s.exportImage()
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestComposeDrawsPaperPaintAndStatus(t *testing.T) {
	p, ok := paper.Preset("blank")
	require.True(t, ok)
	s := newSession(t, WithBrush(felt()), WithPaper(p, paper.Presets()))
	stroke(s, [2]float64{10, 10}, [2]float64{60, 10}, [2]float64{110, 10})

	dst := image.NewRGBA(image.Rect(0, 0, 200, 100))
	s.compose(dst)

	bg := p.Background
	assert.Equal(t, bg, dst.RGBAAt(150, 50))
	assert.NotEqual(t, bg, dst.RGBAAt(60, 10))
	dark := false
	for x := 0; x < 200; x++ {
		c := dst.RGBAAt(x, 100-8)
		if c.R < 100 && c.G < 100 && c.B < 100 {
			dark = true
			break
		}
	}
	assert.True(t, dark, "status text")
}
