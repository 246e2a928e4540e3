package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/morningpaint/internal/brush"
	"github.com/example/morningpaint/internal/paper"
	"github.com/example/morningpaint/internal/tile"
	"github.com/example/morningpaint/internal/watercolor"
)

func TestParse(t *testing.T) {
	input := `
paper = studio
save_dir = /tmp/paintings
tile_size = 512
seed = 42

[brush]
kind = oil
size = 14.5
color = cobalt
opacity = 80

[export]
max_dimension = 4096
background_opacity = 45

[notify]
save = true
export = false
copy = true

[paper.studio]
Label = Studio
Background = #111111
Pattern = grid
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Paper != "studio" {
		t.Errorf("Expected paper 'studio', got '%s'", cfg.Paper)
	}
	if cfg.SaveDir != "/tmp/paintings" {
		t.Errorf("Expected save_dir '/tmp/paintings', got '%s'", cfg.SaveDir)
	}
	if cfg.TileSize != 512 || cfg.Seed != 42 || cfg.History != 100 {
		t.Errorf("root fields: tile_size=%d seed=%d history=%d", cfg.TileSize, cfg.Seed, cfg.History)
	}
	if cfg.Brush.Kind != brush.Oil || cfg.Brush.Size != 14.5 || cfg.Brush.Opacity != 80 {
		t.Errorf("brush: %+v", cfg.Brush)
	}
	if cfg.Brush.Color != (color.RGBA{0x29, 0x80, 0xB9, 0xFF}) {
		t.Errorf("brush color: %+v", cfg.Brush.Color)
	}
	if cfg.Export.MaxDimension != 4096 || cfg.Export.BackgroundOpacity != 45 {
		t.Errorf("export: %+v", cfg.Export)
	}
	if !cfg.Notify.Save || cfg.Notify.Export || !cfg.Notify.Copy {
		t.Errorf("notify: %+v", cfg.Notify)
	}

	p, ok := cfg.Papers["studio"]
	if !ok {
		t.Fatal("Expected paper 'studio' to be loaded")
	}
	if p.Background.R != 0x11 || p.Pattern != paper.PatternGrid || p.Label != "Studio" {
		t.Errorf("Unexpected paper: %+v", p)
	}
	loaded, err := cfg.PaperLoader().Load(cfg.Paper)
	if err != nil || loaded.Background != p.Background {
		t.Errorf("PaperLoader gave %+v, %v", loaded, err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"tile_size = zero\n",
		"tile_size = 30\n",
		"history = -1\n",
		"[brush]\nkind = crayon\n",
		"[brush]\ncolor = notacolor\n",
		"[export]\nbackground_opacity = 140\n",
		"[notify]\nsave = maybe\n",
		"[paper.x]\nPattern = stripes\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Parse(%q) succeeded", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `paper = kraft
save_dir = /home/user/paintings
history = 20

[brush]
kind = calligraphy
size = 6
color = #C0392B
opacity = 55

[notify]
save = true
export = true
copy = false

[paper.kraft]
Background = #C0B090
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	if cfg.Paper != cfg2.Paper || cfg.SaveDir != cfg2.SaveDir || cfg.History != cfg2.History {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Brush != cfg2.Brush {
		t.Errorf("Brush mismatch: %+v vs %+v", cfg.Brush, cfg2.Brush)
	}
	if cfg.Export != cfg2.Export || cfg.Notify != cfg2.Notify {
		t.Errorf("section mismatch: %+v/%+v vs %+v/%+v", cfg.Export, cfg.Notify, cfg2.Export, cfg2.Notify)
	}
	if cfg.Papers["kraft"] != cfg2.Papers["kraft"] {
		t.Errorf("paper mismatch: %+v vs %+v", cfg.Papers["kraft"], cfg2.Papers["kraft"])
	}
	// Inherited from the kraft preset.
	if cfg2.Papers["kraft"].Label != "Kraft" {
		t.Errorf("label %q", cfg2.Papers["kraft"].Label)
	}
}

func TestEnvRejectsUnalignedTileSize(t *testing.T) {
	n := 30
	cfg := New()
	err := Env{TileSize: &n}.Apply(cfg)
	if !errors.Is(err, watercolor.ErrTileSize) {
		t.Fatalf("Apply err = %v, want ErrTileSize", err)
	}
	if cfg.TileSize != tile.DefaultSize {
		t.Errorf("tile size %d changed on error", cfg.TileSize)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MORNINGPAINT_PAPER", "midnight")
	t.Setenv("MORNINGPAINT_BRUSH", "charcoal")
	t.Setenv("MORNINGPAINT_COLOR", "#102030")
	t.Setenv("MORNINGPAINT_TILE_SIZE", "256")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.rc")
	if err := os.WriteFile(path, []byte("paper = warm\ntile_size = 1024\n[brush]\nsize = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("release", path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paper != "midnight" || cfg.TileSize != 256 {
		t.Errorf("env did not override file: paper=%s tile_size=%d", cfg.Paper, cfg.TileSize)
	}
	if cfg.Brush.Kind != brush.Charcoal || cfg.Brush.Size != 30 {
		t.Errorf("brush %+v", cfg.Brush)
	}
	if cfg.Brush.Color != (color.RGBA{0x10, 0x20, 0x30, 0xFF}) {
		t.Errorf("color %+v", cfg.Brush.Color)
	}

	l := NewLoader("release", path)
	l.SkipEnv = true
	cfg, err = l.Load()
	if err != nil || cfg.Paper != "warm" {
		t.Errorf("SkipEnv: paper=%s err=%v", cfg.Paper, err)
	}
}

func TestEnvRejectsBadValues(t *testing.T) {
	t.Setenv("MORNINGPAINT_BRUSH", "crayon")
	cfg := New()
	env, err := ReadEnv()
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Apply(cfg); err == nil {
		t.Fatal("expected bad brush error")
	}

	t.Setenv("MORNINGPAINT_BRUSH", "felt")
	t.Setenv("MORNINGPAINT_HISTORY", "many")
	if _, err := ReadEnv(); err == nil {
		t.Fatal("expected parse error for HISTORY")
	}
}

func TestDefaults(t *testing.T) {
	cfg := New()
	spec := cfg.BrushSpec()
	if spec != brush.DefaultSpec() {
		t.Errorf("BrushSpec %+v, want %+v", spec, brush.DefaultSpec())
	}
	if cfg.Paper != paper.DefaultID {
		t.Errorf("paper %s", cfg.Paper)
	}
	opts := cfg.ExportOptions(paper.Default())
	if opts.MaxDimension != 8192 || opts.BackgroundOpacity != 30 {
		t.Errorf("export options %+v", opts)
	}
}
