package pigment

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func near(t *testing.T, got, want color.RGBA, tol int) {
	t.Helper()
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	if d(got.R, want.R) > tol || d(got.G, want.G) > tol || d(got.B, want.B) > tol {
		t.Fatalf("got %+v, want %+v ±%d", got, want, tol)
	}
}

func TestMixIdentity(t *testing.T) {
	for _, n := range Palette() {
		near(t, Mix(n.Color, n.Color, 0.37), n.Color, 1)
	}
}

func TestMixRatioExtremes(t *testing.T) {
	a := color.RGBA{0x29, 0x80, 0xB9, 0xFF}
	b := color.RGBA{0xF1, 0xC4, 0x0F, 0xFF}
	near(t, Mix(a, b, 1), a, 1)
	near(t, Mix(a, b, 0), b, 1)
	near(t, Mix(a, b, 2), a, 1)
	near(t, MixPercent(a, b, 0), b, 1)
}

func TestMixBlueYellowTrendsGreen(t *testing.T) {
	blue := color.RGBA{0x29, 0x80, 0xB9, 0xFF}
	yellow := color.RGBA{0xF1, 0xC4, 0x0F, 0xFF}
	got := MixPercent(blue, yellow, 50)
	assert.Greater(t, got.G, got.R, "green should dominate red")
	assert.Greater(t, got.G, got.B, "green should dominate blue")
	assert.Equal(t, uint8(255), got.A)
}

func TestKSRoundTripExtremes(t *testing.T) {
	near(t, FromKS(ToKS(color.RGBA{A: 255})), color.RGBA{A: 255}, 0)
	near(t, FromKS(ToKS(color.RGBA{255, 255, 255, 255})), color.RGBA{255, 255, 255, 255}, 0)
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#1D1D1F":   {0x1D, 0x1D, 0x1F, 0xFF},
		"#fff":      {0xFF, 0xFF, 0xFF, 0xFF},
		"#11223344": {0x11, 0x22, 0x33, 0x44},
		"cobalt":    {0x29, 0x80, 0xB9, 0xFF},
		"Red":       {0xFF, 0x00, 0x00, 0xFF},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "#12", "notacolor", "#zzzzzz"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "#2980B9", Hex(color.RGBA{0x29, 0x80, 0xB9, 0xFF}))
}
