// Package notify sends desktop notifications after a painting is saved,
// exported or copied.
package notify

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kelseyhightower/envconfig"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when the canvas tiles are persisted.
	EventSave Event = "save"
	// EventExport fires when a flattened image is written.
	EventExport Event = "export"
	// EventCopy fires when an image is copied to the clipboard.
	EventCopy Event = "copy"
)

// previewSize bounds the icon written for export notifications.
const previewSize = 256

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Events: map[Event]EventPreference{
			EventSave:   {Template: "Saved %s"},
			EventExport: {Template: "Exported %s"},
			EventCopy:   {Template: "Copied %s to clipboard"},
		},
	}
}

type prefsEnv struct {
	Title      string `envconfig:"NOTIFY_TITLE"`
	SaveText   string `envconfig:"NOTIFY_SAVE_TEXT"`
	ExportText string `envconfig:"NOTIFY_EXPORT_TEXT"`
	CopyText   string `envconfig:"NOTIFY_COPY_TEXT"`
}

// LoadPreferences reads MORNINGPAINT_NOTIFY_* overrides from the environment.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	var env prefsEnv
	if err := envconfig.Process("MORNINGPAINT", &env); err != nil {
		logging.Logger().Warn("notification preferences", "err", err)
		return prefs
	}
	if v := strings.TrimSpace(env.Title); v != "" {
		prefs.Title = v
	}
	apply := func(v string, event Event) {
		if v = strings.TrimSpace(v); v != "" {
			eventPrefs := prefs.Events[event]
			eventPrefs.Template = v
			prefs.Events[event] = eventPrefs
		}
	}
	apply(env.SaveText, EventSave)
	apply(env.ExportText, EventExport)
	apply(env.CopyText, EventCopy)
	return prefs
}

// notifyFn is swapped in tests.
var notifyFn = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Save sends a save notification naming where the tiles went.
func (n *Notifier) Save(path string, tiles int) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	n.dispatch(EventSave, fmt.Sprintf("%d tiles to %s", tiles, detail), platform.Options{})
}

// Export sends an export notification with a thumbnail of img when given.
func (n *Notifier) Export(path string, img image.Image) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	opts := platform.Options{}
	if img != nil {
		if icon, cleanup, err := createPreview(img); err != nil {
			logging.Logger().Warn("notification preview", "err", err)
		} else {
			defer cleanup()
			opts.IconPath = icon
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "painting"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	err := notifyFn(n.prefs.Title, body, opts)
	switch {
	case errors.Is(err, platform.ErrUnsupported):
		logging.Logger().Debug("notification skipped", "event", string(event), "err", err)
	case err != nil:
		logging.Logger().Warn("notification failed", "event", string(event), "err", err)
	}
}

func (n *Notifier) template(event Event) string {
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "morningpaint-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	thumb := imaging.Fit(img, previewSize, previewSize, imaging.Box)
	if err := imaging.Encode(f, thumb, imaging.PNG); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Logger().Warn("remove preview", "err", err)
		}
	}
	return path, cleanup, nil
}
