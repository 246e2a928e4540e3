// Package viewer is the interactive painting window.
package viewer

import (
	"image"
	"image/draw"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/canvas"
	"github.com/example/morningpaint/internal/export"
	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/notify"
	"github.com/example/morningpaint/internal/paper"
	"github.com/example/morningpaint/internal/persist"
	"github.com/example/morningpaint/internal/script"
)

const (
	defaultWidth  = 1280
	defaultHeight = 800
)

// Viewer shows a canvas in a window and paints into it with the mouse.
type Viewer struct {
	session *session
	limiter *canvas.FrameLimiter
	title   string
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithPaper sets the starting paper and the papers P cycles through.
func WithPaper(p paper.Paper, all []paper.Paper) Option {
	return func(v *Viewer) {
		v.session.paper = p
		v.session.papers = all
		v.session.exportOpts.Paper = p.Background
	}
}

// WithBrush sets the starting brush.
func WithBrush(spec brush.Spec) Option {
	return func(v *Viewer) { v.session.spec = spec.Normalize() }
}

// WithSaver saves dirty tiles after every stroke.
func WithSaver(s persist.Saver) Option { return func(v *Viewer) { v.session.saver = s } }

// WithNotifier reports saves, exports and copies.
func WithNotifier(n *notify.Notifier) Option { return func(v *Viewer) { v.session.notifier = n } }

// WithRecorder records every stroke as a script.
func WithRecorder(r *script.Recorder) Option { return func(v *Viewer) { v.session.recorder = r } }

// WithClipboard enables Ctrl+C and Ctrl+V.
func WithClipboard(c Clipboard) Option { return func(v *Viewer) { v.session.clipboard = c } }

// WithExport sets export options and the directory Ctrl+E writes to.
func WithExport(opts export.Options, dir string) Option {
	return func(v *Viewer) {
		bg := v.session.exportOpts.Paper
		v.session.exportOpts = opts
		v.session.exportOpts.Paper = bg
		v.session.exportDir = dir
	}
}

// WithTitle sets the window title.
func WithTitle(t string) Option { return func(v *Viewer) { v.title = t } }

// New returns a viewer for c.
func New(c *canvas.Canvas, opts ...Option) *Viewer {
	def := paper.Default()
	v := &Viewer{
		session: &session{
			canvas:     c,
			view:       canvas.DefaultView(),
			paper:      def,
			papers:     paper.Presets(),
			spec:       brush.DefaultSpec(),
			exportOpts: export.DefaultOptions(),
			exportDir:  ".",
			now:        time.Now,
		},
		limiter: canvas.NewFrameLimiter(canvas.DefaultFrameInterval),
		title:   "Morning Paint",
	}
	v.session.exportOpts.Paper = def.Background
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run opens the window and blocks until it closes.
func (v *Viewer) Run() { driver.Main(v.Main) }

// Main runs the event loop on s. The canvas is only touched from this
// goroutine; finished frames are handed to an uploader.
func (v *Viewer) Main(s screen.Screen) {
	width, height := defaultWidth, defaultHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: v.title})
	if err != nil {
		logging.Logger().Error("new window", "err", err)
		return
	}
	defer w.Release()

	frames := make(chan *image.RGBA, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for img := range frames {
			upload(s, w, img)
		}
	}()
	defer func() {
		close(frames)
		<-done
	}()

	quit := false
	keys := newKeymap()
	bindSession(keys, v.session, func() { quit = true })

	var timer *time.Timer
	invalidate := func() {
		v.limiter.Invalidate()
		w.Send(paint.Event{})
	}

	for !quit {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			invalidate()
		case paint.Event:
			now := time.Now()
			if !v.limiter.Ready(now) {
				if v.limiter.Pending() && timer == nil {
					timer = time.AfterFunc(v.limiter.Wait(now), func() { w.Send(paint.Event{}) })
				}
				continue
			}
			timer = nil
			if width <= 0 || height <= 0 {
				continue
			}
			img := image.NewRGBA(image.Rect(0, 0, width, height))
			v.session.compose(img)
			select {
			case frames <- img:
			default:
				select {
				case <-frames:
				default:
				}
				frames <- img
			}
		case mouse.Event:
			v.mouse(e)
			invalidate()
		case key.Event:
			if keys.handle(e) {
				invalidate()
			}
		case error:
			logging.Logger().Error("window", "err", e)
		}
	}
}

func (v *Viewer) mouse(e mouse.Event) {
	s := v.session
	x, y := float64(e.X), float64(e.Y)
	switch {
	case e.Button == mouse.ButtonWheelUp && e.Direction == mouse.DirStep:
		s.zoom(x, y, true)
	case e.Button == mouse.ButtonWheelDown && e.Direction == mouse.DirStep:
		s.zoom(x, y, false)
	case e.Button == mouse.ButtonMiddle && e.Direction == mouse.DirPress,
		e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && e.Modifiers&key.ModShift != 0:
		s.startPan(x, y)
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		s.pointerDown(x, y)
	case e.Direction == mouse.DirRelease:
		s.pointerUp(x, y)
	case e.Direction == mouse.DirNone:
		s.pointerMove(x, y)
	}
}

func upload(s screen.Screen, w screen.Window, img *image.RGBA) {
	b, err := s.NewBuffer(img.Bounds().Size())
	if err != nil {
		logging.Logger().Error("new buffer", "err", err)
		return
	}
	defer b.Release()
	draw.Draw(b.RGBA(), b.Bounds(), img, image.Point{}, draw.Src)
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
