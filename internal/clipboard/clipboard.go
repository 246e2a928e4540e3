// Package clipboard copies exported paintings and color values to the system
// clipboard and reads reference images from it.
package clipboard

import "errors"

var (
	// ErrNoImage is returned when the clipboard holds no PNG data.
	ErrNoImage = errors.New("clipboard does not contain image data")
	// ErrNoText is returned when the clipboard holds no text.
	ErrNoText = errors.New("clipboard does not contain text data")
	// ErrUnsupported is returned on platforms without clipboard access.
	ErrUnsupported = errors.New("clipboard operations are not supported on this platform")
)
