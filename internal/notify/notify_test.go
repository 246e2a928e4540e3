package notify

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/example/morningpaint/internal/logging"
	"github.com/example/morningpaint/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T, err error) *[]sent {
	t.Helper()
	var got []sent
	orig := notifyFn
	t.Cleanup(func() { notifyFn = orig })
	notifyFn = func(title, body string, opts platform.Options) error {
		s := sent{title: title, body: body, opts: opts}
		if opts.IconPath != "" {
			_, statErr := os.Stat(opts.IconPath)
			s.iconExisted = statErr == nil
		}
		got = append(got, s)
		return err
	}
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t, nil)
	n := New(DefaultPreferences())
	n.Save("x", 1)
	n.Export("x.png", nil)
	n.Copy("x")
	var nilNotifier *Notifier
	nilNotifier.Copy("x")
	if len(*got) != 0 {
		t.Fatalf("sent %d notifications", len(*got))
	}
}

func TestExportSendsPreview(t *testing.T) {
	got := capture(t, nil)
	n := New(DefaultPreferences())
	n.Enable(EventExport, true)
	n.Export("painting.png", image.NewRGBA(image.Rect(0, 0, 600, 300)))
	if len(*got) != 1 {
		t.Fatalf("sent %d notifications", len(*got))
	}
	s := (*got)[0]
	if s.title != platform.AppName || !strings.HasPrefix(s.body, "Exported ") || !strings.HasSuffix(s.body, "painting.png") {
		t.Fatalf("got %+v", s)
	}
	if !s.iconExisted {
		t.Fatal("preview icon missing during dispatch")
	}
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Fatalf("preview not cleaned up: %v", err)
	}
}

func TestTemplatesFromEnvironment(t *testing.T) {
	t.Setenv("MORNINGPAINT_NOTIFY_TITLE", "Studio")
	t.Setenv("MORNINGPAINT_NOTIFY_COPY_TEXT", "Clipboard has %s")
	got := capture(t, errors.New("no session bus"))
	n := New(LoadPreferences())
	n.Enable(EventCopy, true)
	n.Enable(EventSave, true)
	n.Copy("")
	n.Save("tiles", 3)
	if len(*got) != 2 {
		t.Fatalf("sent %d notifications", len(*got))
	}
	if (*got)[0].title != "Studio" || (*got)[0].body != "Clipboard has painting" {
		t.Fatalf("copy: %+v", (*got)[0])
	}
	if !strings.HasPrefix((*got)[1].body, "Saved 3 tiles to ") {
		t.Fatalf("save: %+v", (*got)[1])
	}
}

func TestUnsupportedPlatformLogsQuietly(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { logging.SetLogger(nil) })

	got := capture(t, platform.ErrUnsupported)
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)
	n.Copy("#C0392B")
	if len(*got) != 1 {
		t.Fatalf("sent %d notifications", len(*got))
	}
	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "notification skipped") {
		t.Fatalf("log %q, want a debug record", out)
	}
	if strings.Contains(out, "level=WARN") {
		t.Fatalf("unsupported platform logged a warning: %q", out)
	}
}
