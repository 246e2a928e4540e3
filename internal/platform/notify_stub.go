//go:build !linux && !darwin && !windows

package platform

// Notify reports ErrUnsupported; this platform has no notification center
// binding.
func Notify(title, body string, opts Options) error {
	return ErrUnsupported
}
