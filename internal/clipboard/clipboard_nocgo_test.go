//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"testing"
)

func TestWithoutCGOIsUnsupported(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	resetInit(t)

	if err := WriteText("#C0392B"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("WriteText: expected ErrUnsupported, got %v", err)
	}
	if _, err := ReadText(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ReadText: expected ErrUnsupported, got %v", err)
	}
}
