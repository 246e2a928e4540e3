package paper

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPresets(t *testing.T) {
	ids := []string{"blank", "dots", "lines", "grid", "warm", "cool", "kraft", "midnight"}
	got := Presets()
	if len(got) != len(ids) {
		t.Fatalf("got %d presets", len(got))
	}
	for i, id := range ids {
		if got[i].ID != id {
			t.Errorf("preset %d = %s, want %s", i, got[i].ID, id)
		}
	}
	if Default().ID != "dots" {
		t.Fatalf("default %s", Default().ID)
	}
	mid, _ := Preset("Midnight")
	if !mid.Dark() || Default().Dark() {
		t.Fatal("dark detection wrong")
	}
}

func TestParseRoundTrip(t *testing.T) {
	in := Paper{ID: "sketch", Label: "Sketch Book", Background: color.RGBA{0xF7, 0xF3, 0xE8, 0xFF}, Pattern: PatternLines}
	out, err := Parse(strings.NewReader(in.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out != in {
		t.Fatalf("round trip got %+v want %+v", out, in)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: nope\n")); err == nil {
		t.Fatal("expected color error")
	}
	if _, err := Parse(strings.NewReader("Pattern: zigzag\n")); err == nil {
		t.Fatal("expected pattern error")
	}
	p, err := Parse(strings.NewReader("# comment\nUnknown: 1\nno separator\n"))
	if err != nil || p.ID != "custom" {
		t.Fatalf("p=%+v err=%v", p, err)
	}
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "studio.paper"), []byte("ID: studio\nBackground: #102030\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir, Custom: map[string]Paper{"kraft": {ID: "kraft", Background: color.RGBA{1, 2, 3, 255}}}}

	p, err := l.Load("studio")
	if err != nil || p.Background != (color.RGBA{0x10, 0x20, 0x30, 0xFF}) {
		t.Fatalf("studio: %+v %v", p, err)
	}
	p, err = l.Load("kraft")
	if err != nil || p.Background != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("custom kraft: %+v %v", p, err)
	}
	p, err = l.Load(filepath.Join(dir, "studio.paper"))
	if err != nil || p.ID != "studio" {
		t.Fatalf("by path: %+v %v", p, err)
	}
	if p, _ := l.Load(""); p.ID != DefaultID {
		t.Fatalf("empty name gave %s", p.ID)
	}
	if _, err := l.Load("missing"); err == nil {
		t.Fatal("expected not found")
	}
}

func TestDrawGrid(t *testing.T) {
	p, _ := Preset("grid")
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	p.Draw(dst, 0, 0, 1)
	if dst.RGBAAt(40, 13) == dst.RGBAAt(13, 13) {
		t.Fatal("vertical guide missing at x=40")
	}
	if dst.RGBAAt(13, 80) == dst.RGBAAt(13, 13) {
		t.Fatal("horizontal guide missing at y=80")
	}
	if dst.RGBAAt(13, 13) != p.Background {
		t.Fatalf("background %+v", dst.RGBAAt(13, 13))
	}
}

func TestDrawHidesDenseGuides(t *testing.T) {
	p, _ := Preset("lines")
	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))
	p.Draw(dst, 0, 0, 0.2)
	for y := 0; y < 50; y++ {
		if dst.RGBAAt(3, y) != p.Background {
			t.Fatalf("guide drawn at zoom 0.2 (row %d)", y)
		}
	}
}
