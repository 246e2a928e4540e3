package main

import (
	"bytes"
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/morningpaint/internal/config"
	"github.com/example/morningpaint/internal/pigment"
	"github.com/example/morningpaint/internal/script"
)

func testRoot(t *testing.T) (*root, *bytes.Buffer) {
	t.Helper()
	cfg := config.New()
	cfg.TileSize = 64
	var out bytes.Buffer
	return newRootWith(cfg, nil, &out), &out
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	r, out := testRoot(t)
	if err := r.Run(args); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestPaintThenExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "canvas")
	got := run(t, "paint", "-store", dir, "-brush", "felt", "-color", "ink", "stroke", "10,10", "60,20", "120,40")
	assert.Contains(t, got, "1 strokes")

	listing := run(t, "tiles", "-store", dir)
	assert.Contains(t, listing, "0,0")

	out := filepath.Join(t.TempDir(), "painting.png")
	got = run(t, "-paper", "blank", "export", "-store", dir, "-output", out)
	assert.Contains(t, got, out)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 128, 64), img.Bounds())
}

func TestPaintArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sketch.mpaint")
	run(t, "paint", "-store", path, "-brush", "pastel", "stroke", "0,0", "40,40")
	got := run(t, "paint", "-store", path, "reset")
	assert.Contains(t, got, "1 resets")

	listing := run(t, "tiles", "-store", path)
	assert.Contains(t, listing, "archive version 1")
	assert.Contains(t, listing, "no tiles")
}

func TestExportEmptyStore(t *testing.T) {
	r, _ := testRoot(t)
	err := r.Run([]string{"export", "-store", t.TempDir(), "-output", filepath.Join(t.TempDir(), "x.png")})
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "nothing to export"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestExportToClipboard(t *testing.T) {
	original := writeClipboardImage
	var copied image.Image
	writeClipboardImage = func(img image.Image) error { copied = img; return nil }
	t.Cleanup(func() { writeClipboardImage = original })

	dir := t.TempDir()
	run(t, "paint", "-store", dir, "-brush", "charcoal", "stroke", "5,5", "50,30")
	got := run(t, "export", "-store", dir, "-to-clipboard")
	require.NotNil(t, copied)
	assert.Contains(t, got, "copied")
}

func TestExportClipboardErrorWrapped(t *testing.T) {
	original := writeClipboardImage
	sentinel := errors.New("no display")
	writeClipboardImage = func(image.Image) error { return sentinel }
	t.Cleanup(func() { writeClipboardImage = original })

	dir := t.TempDir()
	run(t, "paint", "-store", dir, "-brush", "felt", "stroke", "5,5", "50,30")
	r, _ := testRoot(t)
	err := r.Run([]string{"export", "-store", dir, "-to-clipboard"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func assertHex(t *testing.T, want, got string) {
	t.Helper()
	w, err := pigment.ParseHex(want)
	require.NoError(t, err)
	g, err := pigment.ParseHex(strings.TrimSpace(got))
	require.NoError(t, err, "output %q", got)
	assert.InDelta(t, w.R, g.R, 1, "red of %s", got)
	assert.InDelta(t, w.G, g.G, 1, "green of %s", got)
	assert.InDelta(t, w.B, g.B, 1, "blue of %s", got)
}

func TestMix(t *testing.T) {
	assertHex(t, "#2980B9", run(t, "mix", "-ratio", "100", "cobalt", "ochre"))
	assertHex(t, "#8B6914", run(t, "mix", "-ratio", "0", "cobalt", "ochre"))

	ramp := strings.Split(strings.TrimSpace(run(t, "mix", "-steps", "3", "#000000", "#FFFFFF")), "\n")
	require.Len(t, ramp, 3)
	assert.True(t, strings.HasPrefix(ramp[0], "100%"), ramp[0])
	assertHex(t, "#000000", strings.Fields(ramp[0])[1])
	assertHex(t, "#FFFFFF", strings.Fields(ramp[2])[1])
}

func TestMixCopy(t *testing.T) {
	original := writeClipboardText
	var copied string
	writeClipboardText = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboardText = original })

	got := run(t, "mix", "-copy", "#FF0000", "#FF0000")
	assert.Equal(t, strings.TrimSpace(got), copied)
}

func TestParseInlineOps(t *testing.T) {
	ops, err := parseInlineOps([]string{"stroke", "1,2", "3,4,0.5", "undo", "fill", "7,8", "reset"})
	require.NoError(t, err)
	require.Len(t, ops, 4)
	assert.Equal(t, [][]float64{{1, 2, -1, 0}, {3, 4, 0.5, sampleInterval}}, ops[0].Points)
	assert.Equal(t, script.TypeUndo, ops[1].Kind())
	assert.Equal(t, script.TypeFill, ops[2].Kind())
	assert.Equal(t, script.TypeReset, ops[3].Kind())

	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"point first", []string{"1,2"}, "before stroke"},
		{"bad point", []string{"stroke", "1"}, "want x,y"},
		{"not a number", []string{"stroke", "a,b"}, "invalid syntax"},
		{"empty stroke", []string{"stroke", "undo"}, "no points"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseInlineOps(tc.args)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "Usage: morningpaint"},
		{"unknown command", []string{"scribble"}, "Commands:"},
		{"paint without ops", []string{"paint"}, "Usage: morningpaint paint"},
		{"fill needs two numbers", []string{"fill", "1"}, "Usage: morningpaint fill"},
		{"mix ratio", []string{"mix", "-ratio", "120", "ink", "chalk"}, "outside 0-100"},
		{"export clipboard and output", []string{"export", "-to-clipboard", "-output", "x.png"}, "cannot be combined"},
		{"help flag", []string{"view", "-h"}, "Ctrl+Z"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := testRoot(t)
			err := r.Run(tc.args)
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(uerr.Error(), tc.want) {
				t.Fatalf("expected %q in:\n%s", tc.want, uerr.Error())
			}
		})
	}
}

func TestPapersListsCustom(t *testing.T) {
	cfg := config.New()
	p, err := config.Parse(strings.NewReader("[paper.sepia]\nbackground = #704214\nlabel = Sepia\n"))
	require.NoError(t, err)
	cfg.Papers = p.Papers
	var out bytes.Buffer
	r := newRootWith(cfg, nil, &out)
	require.NoError(t, r.Run([]string{"-paper", "sepia", "papers"}))
	assert.Contains(t, out.String(), "* sepia")
	assert.Contains(t, out.String(), "#704214")
	assert.Contains(t, out.String(), "  midnight")
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "morningpaint version dev\n", run(t, "version"))
}
