package canvas

import (
	"image"
	"math"
	"time"

	"github.com/example/morningpaint/internal/raster"
)

const (
	MinZoom = 0.15
	MaxZoom = 4
)

// View maps world space to screen space: screen = (world - origin) * Zoom.
type View struct {
	OX, OY float64
	Zoom   float64
}

// DefaultView shows the world origin at 1:1.
func DefaultView() View { return View{Zoom: 1} }

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

func (v View) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ScreenToWorld converts a screen position to world space.
func (v View) ScreenToWorld(sx, sy float64) raster.Point {
	z := v.zoom()
	return raster.Pt(sx/z+v.OX, sy/z+v.OY)
}

// WorldToScreen converts a world position to screen space.
func (v View) WorldToScreen(p raster.Point) (float64, float64) {
	z := v.zoom()
	return (p.X - v.OX) * z, (p.Y - v.OY) * z
}

// ZoomAt scales the zoom by factor while the world point under screen
// position (sx, sy) stays put. The result is clamped to [MinZoom, MaxZoom].
func (v View) ZoomAt(sx, sy, factor float64) View {
	anchor := v.ScreenToWorld(sx, sy)
	z := clampZoom(v.zoom() * factor)
	return View{OX: anchor.X - sx/z, OY: anchor.Y - sy/z, Zoom: z}
}

// Pan moves the content by a screen space delta.
func (v View) Pan(dx, dy float64) View {
	z := v.zoom()
	v.OX -= dx / z
	v.OY -= dy / z
	return v
}

// WorldRect returns the world rectangle visible on a w×h screen.
func (v View) WorldRect(w, h int) image.Rectangle {
	z := v.zoom()
	return image.Rect(
		int(math.Floor(v.OX)),
		int(math.Floor(v.OY)),
		int(math.Ceil(v.OX+float64(w)/z)),
		int(math.Ceil(v.OY+float64(h)/z)),
	)
}

// DefaultFrameInterval is the shortest gap between renders.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameLimiter coalesces render requests: any number of Invalidate calls
// between frames produce at most one render per interval.
type FrameLimiter struct {
	interval time.Duration
	last     time.Time
	pending  bool
}

// NewFrameLimiter returns a limiter with the given interval. Non-positive
// intervals use DefaultFrameInterval.
func NewFrameLimiter(interval time.Duration) *FrameLimiter {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &FrameLimiter{interval: interval}
}

// Invalidate records that the picture changed.
func (f *FrameLimiter) Invalidate() { f.pending = true }

// Pending reports whether a render is owed.
func (f *FrameLimiter) Pending() bool { return f.pending }

// Ready reports whether a render should run at now. A true result consumes
// the pending request.
func (f *FrameLimiter) Ready(now time.Time) bool {
	if !f.pending || now.Sub(f.last) < f.interval {
		return false
	}
	f.pending = false
	f.last = now
	return true
}

// Wait returns how long until a pending render may run.
func (f *FrameLimiter) Wait(now time.Time) time.Duration {
	if !f.pending {
		return 0
	}
	if d := f.interval - now.Sub(f.last); d > 0 {
		return d
	}
	return 0
}
