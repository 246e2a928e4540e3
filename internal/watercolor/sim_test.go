package watercolor

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/example/morningpaint/internal/grain"
	"github.com/example/morningpaint/internal/raster"
	"github.com/example/morningpaint/internal/tile"
)

func maxWater(s *Simulator) float32 {
	var m float32
	for _, f := range s.fields {
		for _, w := range f.water[f.cur] {
			if w > m {
				m = w
			}
		}
	}
	return m
}

func TestStepWaterNonIncreasing(t *testing.T) {
	s := New(64)
	g := grain.New(7)
	if err := s.Deposit(raster.Pt(10, 10), raster.Pt(50, 30), 0.8, 0.2, 12, g); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	total, peak := s.TotalWater(), maxWater(s)
	if total == 0 {
		t.Fatal("deposit added no water")
	}
	for i := 0; i < FinalSteps; i++ {
		s.Step()
		nt, np := s.TotalWater(), maxWater(s)
		if nt > total {
			t.Fatalf("step %d: total water rose %v -> %v", i, total, nt)
		}
		if np > peak {
			t.Fatalf("step %d: peak water rose %v -> %v", i, peak, np)
		}
		total, peak = nt, np
	}
}

func TestUniformFieldOnlyEvaporates(t *testing.T) {
	s := New(16)
	f, _ := s.ensure(tile.C(0, 0))
	for i := range f.water[f.cur] {
		f.water[f.cur][i] = 0.5
	}
	s.Step()
	n := s.CellSize()
	// Interior cells see a zero Laplacian.
	w, _ := s.Cell(n/2, n/2)
	if want := float32(0.5 * (1 - evaporation)); w != want {
		t.Fatalf("interior water %v, want %v", w, want)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if w, _ := s.Cell(x, y); w > 0.5 {
				t.Fatalf("cell (%d,%d) rose to %v", x, y, w)
			}
		}
	}
}

func TestPigmentStaysBounded(t *testing.T) {
	s := New(32)
	g := grain.New(3)
	for i := 0; i < 20; i++ {
		if err := s.Deposit(raster.Pt(4, 4), raster.Pt(28, 28), 1, 0, 40, g); err != nil {
			t.Fatal(err)
		}
		s.Steps(LiveSteps)
	}
	s.Steps(FinalSteps)
	for _, f := range s.fields {
		for i, p := range f.pigment[f.cur] {
			if p < 0 || p > 1 {
				t.Fatalf("pigment %v out of range at %d", p, i)
			}
			if w := f.water[f.cur][i]; w < 0 || w > 1 {
				t.Fatalf("water %v out of range at %d", w, i)
			}
		}
	}
}

func TestStepCrossesFieldBoundary(t *testing.T) {
	s := New(32)
	n := s.CellSize()
	left, _ := s.ensure(tile.C(0, 0))
	s.ensure(tile.C(1, 0))
	// Wet the last column of the left field only.
	for y := 0; y < n; y++ {
		left.water[left.cur][y*n+n-1] = 1
		left.pigment[left.cur][y*n+n-1] = 1
	}
	s.Step()
	w, p := s.Cell(n, n/2)
	if w == 0 {
		t.Fatal("water did not cross into the right field")
	}
	if p == 0 {
		t.Fatal("pigment did not cross into the right field")
	}
}

func TestDepositBudget(t *testing.T) {
	s := New(16, WithMaxFields(1))
	err := s.Deposit(raster.Pt(-4, -4), raster.Pt(4, 4), 1, 0, 8, nil)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
}

func TestRenderWritesBuffer(t *testing.T) {
	s := New(32)
	if err := s.Deposit(raster.Pt(8, 16), raster.Pt(24, 16), 1, 0, 16, grain.New(1)); err != nil {
		t.Fatal(err)
	}
	s.Steps(FinalSteps)
	buf := tile.New(32)
	blue := color.RGBA{B: 200, A: 255}
	if err := s.Render(buf, blue); err != nil {
		t.Fatalf("Render: %v", err)
	}
	tl, ok := buf.Get(tile.C(0, 0))
	if !ok {
		t.Fatal("render allocated no tile")
	}
	px := tl.Image.RGBAAt(16, 16)
	if px.A == 0 || px.B == 0 || px.R != 0 {
		t.Fatalf("centre pixel %+v", px)
	}
	if px.B > px.A {
		t.Fatalf("pixel not premultiplied: %+v", px)
	}
}

func TestCheckTileSize(t *testing.T) {
	for _, tc := range []struct {
		size    int
		ok      bool
		aligned int
	}{
		{size: 32, ok: true, aligned: 32},
		{size: 2048, ok: true, aligned: 2048},
		{size: 30, aligned: 32},
		{size: 1, aligned: 4},
		{size: 0, aligned: 4},
	} {
		err := CheckTileSize(tc.size)
		if (err == nil) != tc.ok {
			t.Errorf("CheckTileSize(%d) = %v", tc.size, err)
		}
		if err != nil && !errors.Is(err, ErrTileSize) {
			t.Errorf("CheckTileSize(%d) = %v, want ErrTileSize", tc.size, err)
		}
		if got := AlignTileSize(tc.size); got != tc.aligned {
			t.Errorf("AlignTileSize(%d) = %d, want %d", tc.size, got, tc.aligned)
		}
	}
}

// A dab far from the origin must render where it was deposited, which only
// holds when every field lines up with its tile.
func TestRenderLandsUnderDeposit(t *testing.T) {
	const x, y = 100.0, 48.0
	s := New(32)
	if err := s.Deposit(raster.Pt(x, y), raster.Pt(x, y), 1, 0, 16, grain.New(1)); err != nil {
		t.Fatal(err)
	}
	s.Steps(FinalSteps)
	buf := tile.New(32)
	if err := s.Render(buf, color.RGBA{R: 200, A: 255}); err != nil {
		t.Fatal(err)
	}
	var sum, sx, sy float64
	for _, tl := range buf.Tiles() {
		b := tl.Image.Bounds()
		for py := b.Min.Y; py < b.Max.Y; py++ {
			for px := b.Min.X; px < b.Max.X; px++ {
				a := float64(tl.Image.RGBAAt(px, py).A)
				sum += a
				sx += a * float64(tl.Origin.X+px-b.Min.X)
				sy += a * float64(tl.Origin.Y+py-b.Min.Y)
			}
		}
	}
	if sum == 0 {
		t.Fatal("render painted nothing")
	}
	cx, cy := sx/sum, sy/sum
	if math.Abs(cx-x) > 3 || math.Abs(cy-y) > 3 {
		t.Fatalf("centroid (%.1f, %.1f), want near (%v, %v)", cx, cy, x, y)
	}
}

func TestAlphaDrierIsDarker(t *testing.T) {
	if Alpha(0.1, 0.5) <= Alpha(0.9, 0.5) {
		t.Fatal("dry cell should be more opaque than wet cell")
	}
	if Alpha(0, 1) != 1 {
		t.Fatalf("Alpha clamps to 1, got %v", Alpha(0, 1))
	}
}
