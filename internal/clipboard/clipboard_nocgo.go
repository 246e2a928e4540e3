//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"image"
)

// The X11 and Wayland backends link through cgo, so a pure Go build finds
// the display but cannot talk to it.
var errNoCGO = fmt.Errorf("%w: built without cgo", ErrUnsupported)

func initBackend() error { return errNoCGO }

// WriteImage always fails without cgo.
func WriteImage(image.Image) error { return ensureInit() }

// ReadImage always fails without cgo.
func ReadImage() (image.Image, error) { return nil, ensureInit() }

// WriteText always fails without cgo.
func WriteText(string) error { return ensureInit() }

// ReadText always fails without cgo.
func ReadText() (string, error) { return "", ensureInit() }
