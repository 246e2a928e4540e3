package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/canvas"
	"github.com/example/morningpaint/internal/export"
	"github.com/example/morningpaint/internal/input"
	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/notify"
	"github.com/example/morningpaint/internal/paper"
	"github.com/example/morningpaint/internal/persist"
	"github.com/example/morningpaint/internal/raster"
	"github.com/example/morningpaint/internal/script"
)

const (
	zoomInFactor  = 1.08
	zoomOutFactor = 0.93
	sizeStep      = 2
	statusHeight  = 20
	messageTime   = 2 * time.Second
	saveTimeout   = 5 * time.Second
)

// Clipboard is the part of the system clipboard the viewer uses.
type Clipboard interface {
	WriteImage(image.Image) error
	ReadImage() (image.Image, error)
}

// reference is an image shown between the paper and the paint.
type reference struct {
	img  image.Image
	rect image.Rectangle
}

// session is the painter state driven by window events. It has no window of
// its own so it can be driven directly.
type session struct {
	canvas *canvas.Canvas
	view   canvas.View
	paper  paper.Paper
	papers []paper.Paper
	spec   brush.Spec

	saver      persist.Saver
	notifier   *notify.Notifier
	recorder   *script.Recorder
	clipboard  Clipboard
	exportOpts export.Options
	exportDir  string

	painting    bool
	strokeStart time.Time
	panning     bool
	panLast     raster.Point
	ref         *reference

	message      string
	messageUntil time.Time
	now          func() time.Time
}

func (s *session) say(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.messageUntil = s.now().Add(messageTime)
	logging.Logger().Info(s.message)
}

func (s *session) sample(x, y float64) input.Sample {
	p := s.view.ScreenToWorld(x, y)
	smp := input.Sample{X: p.X, Y: p.Y, Pointer: input.PointerOther}
	if s.painting {
		smp.Time = s.now().Sub(s.strokeStart)
	}
	return smp
}

// pointerDown starts a stroke, or a fill for the fill brush.
func (s *session) pointerDown(x, y float64) {
	if s.painting {
		return
	}
	smp := s.sample(x, y)
	if err := s.canvas.BeginStroke(s.spec, smp); err != nil {
		s.say("paint: %v", err)
		return
	}
	if s.recorder != nil {
		s.recorder.Begin(s.spec, smp)
	}
	if !s.canvas.Active() {
		s.save()
		return
	}
	s.painting = true
	s.strokeStart = s.now()
}

func (s *session) pointerMove(x, y float64) {
	if s.panning {
		s.view = s.view.Pan(x-s.panLast.X, y-s.panLast.Y)
		s.panLast = raster.Pt(x, y)
		return
	}
	if !s.painting {
		return
	}
	smp := s.sample(x, y)
	if err := s.canvas.AddSample(smp); err != nil {
		s.painting = false
		s.say("stroke stopped: %v", err)
		return
	}
	if s.recorder != nil {
		s.recorder.Add(smp)
	}
}

func (s *session) pointerUp(x, y float64) {
	if s.panning {
		s.panning = false
		return
	}
	if !s.painting {
		return
	}
	s.pointerMove(x, y)
	if !s.painting {
		return
	}
	s.painting = false
	if err := s.canvas.EndStroke(); err != nil {
		s.say("stroke failed: %v", err)
		if s.recorder != nil {
			s.recorder.Cancel()
		}
		return
	}
	if s.recorder != nil {
		s.recorder.End()
	}
	s.save()
}

func (s *session) startPan(x, y float64) {
	if s.painting {
		return
	}
	s.panning = true
	s.panLast = raster.Pt(x, y)
}

func (s *session) zoom(x, y float64, in bool) {
	f := zoomOutFactor
	if in {
		f = zoomInFactor
	}
	s.view = s.view.ZoomAt(x, y, f)
}

func (s *session) undo() {
	s.painting = false
	if s.canvas.Undo() {
		if s.recorder != nil {
			s.recorder.Undo()
		}
		s.save()
		return
	}
	s.say("nothing to undo")
}

func (s *session) cancel() {
	if !s.painting {
		return
	}
	s.painting = false
	s.canvas.CancelStroke()
	if s.recorder != nil {
		s.recorder.Cancel()
	}
}

func (s *session) reset() {
	s.painting = false
	if !s.canvas.Reset() {
		return
	}
	if s.recorder != nil {
		s.recorder.Reset()
	}
	s.save()
	s.say("canvas cleared, undo to restore")
}

func (s *session) selectBrush(k brush.Kind) {
	if s.painting {
		return
	}
	s.spec.Kind = k
	s.say("%s", k.Label())
}

func (s *session) resize(delta float64) {
	s.spec.Size += delta
	s.spec = s.spec.Normalize()
}

func (s *session) cyclePaper() {
	if len(s.papers) == 0 {
		return
	}
	next := 0
	for i, p := range s.papers {
		if p.ID == s.paper.ID {
			next = (i + 1) % len(s.papers)
		}
	}
	s.paper = s.papers[next]
	s.exportOpts.Paper = s.paper.Background
	s.say("paper: %s", s.paper.Label)
}

// save persists dirty tiles. Failures are reported, not fatal.
func (s *session) save() {
	if s.saver == nil {
		return
	}
	n := len(s.canvas.Store().Dirty())
	if n == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := persist.Save(ctx, s.saver, s.canvas.Store()); err != nil {
		s.say("save failed: %v", err)
		return
	}
	s.notifier.Save(describe(s.saver), n)
}

func describe(sv persist.Saver) string {
	switch v := sv.(type) {
	case *persist.DirStore:
		return v.Dir
	case *persist.Archive:
		return v.Path
	}
	return "store"
}

func (s *session) flatten() (image.Image, error) {
	opts := s.exportOpts
	if s.ref != nil {
		opts.Background = s.ref.img
		opts.BackgroundRect = s.ref.rect
	}
	return export.Flatten(s.canvas.Store(), opts)
}

// exportImage writes a PNG into the export directory.
func (s *session) exportImage() (string, error) {
	img, err := s.flatten()
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.exportDir, export.FileName(s.now(), ".png"))
	if err := export.Save(path, img); err != nil {
		return "", err
	}
	s.notifier.Export(path, img)
	s.say("exported %s", path)
	return path, nil
}

func (s *session) copyImage() error {
	if s.clipboard == nil {
		return fmt.Errorf("no clipboard")
	}
	img, err := s.flatten()
	if err != nil {
		return err
	}
	if err := s.clipboard.WriteImage(img); err != nil {
		return err
	}
	s.notifier.Copy("painting")
	s.say("painting copied to clipboard")
	return nil
}

// pasteReference places the clipboard image at the top-left of the view at
// its natural size.
func (s *session) pasteReference() error {
	if s.clipboard == nil {
		return fmt.Errorf("no clipboard")
	}
	img, err := s.clipboard.ReadImage()
	if err != nil {
		return err
	}
	origin := s.view.ScreenToWorld(0, 0)
	at := image.Pt(int(origin.X), int(origin.Y))
	s.ref = &reference{img: img, rect: image.Rectangle{Min: at, Max: at.Add(img.Bounds().Size())}}
	s.say("reference image placed")
	return nil
}

// compose draws one frame: paper, reference, paint, then the status line.
func (s *session) compose(dst *image.RGBA) {
	s.paper.Draw(dst, s.view.OX, s.view.OY, s.view.Zoom)
	if s.ref != nil && s.exportOpts.BackgroundOpacity > 0 {
		x0, y0 := s.view.WorldToScreen(raster.Pt(float64(s.ref.rect.Min.X), float64(s.ref.rect.Min.Y)))
		x1, y1 := s.view.WorldToScreen(raster.Pt(float64(s.ref.rect.Max.X), float64(s.ref.rect.Max.Y)))
		dr := image.Rect(int(x0), int(y0), int(x1), int(y1))
		a := uint8(min(s.exportOpts.BackgroundOpacity, 100) * 255 / 100)
		mask := image.NewUniform(color.Alpha{A: a})
		xdraw.ApproxBiLinear.Scale(dst, dr, s.ref.img, s.ref.img.Bounds(), draw.Over, &xdraw.Options{SrcMask: mask})
	}
	s.canvas.Render(dst, s.view)
	s.drawStatus(dst)
}

func (s *session) drawStatus(dst *image.RGBA) {
	b := dst.Bounds()
	bar := image.Rect(b.Min.X, b.Max.Y-statusHeight, b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, image.NewUniform(color.RGBA{255, 255, 255, 220}), image.Point{}, draw.Over)
	text := fmt.Sprintf("%s  %.0fpx  %d%%  %s  zoom %.0f%%  strokes %d",
		s.spec.Kind.Label(), s.spec.Size, s.spec.Opacity, s.paper.Label, s.view.Zoom*100, s.canvas.Strokes())
	if s.message != "" && s.now().Before(s.messageUntil) {
		text = s.message
	}
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
	d.Dot = fixed.P(bar.Min.X+6, bar.Max.Y-6)
	d.DrawString(text)
}
