package platform

import "errors"

// ErrUnsupported is returned by Notify on platforms without a notification
// center.
var ErrUnsupported = errors.New("desktop notifications are not supported on this platform")

// AppName is the application name shown by notification centers.
const AppName = "Morning Paint"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout is the display time in milliseconds. Zero uses five seconds.
	Timeout int32
}

func (o Options) timeout() int32 {
	if o.Timeout <= 0 {
		return 5000
	}
	return o.Timeout
}
