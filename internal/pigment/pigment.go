// Package pigment mixes colors subtractively with a single-constant
// Kubelka-Munk approximation, so blue and yellow trend toward green instead
// of the grey an RGB average gives.
package pigment

import (
	"image/color"
	"math"
)

// epsilon keeps K/S finite for fully dark channels.
const epsilon = 0.001

// KS is the absorption/scattering ratio of each channel.
type KS struct {
	R, G, B float64
}

func channelKS(c uint8) float64 {
	v := float64(c) / 255
	return (1 - v) * (1 - v) / (2*v + epsilon)
}

func channelFromKS(ks float64) uint8 {
	if ks < 0 {
		ks = 0
	}
	c := 1 + ks - math.Sqrt(ks*ks+2*ks)
	v := math.Round(c * 255)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// ToKS converts an opaque color to its K/S representation. Alpha is ignored.
func ToKS(c color.RGBA) KS {
	return KS{R: channelKS(c.R), G: channelKS(c.G), B: channelKS(c.B)}
}

// FromKS converts back to an opaque color.
func FromKS(ks KS) color.RGBA {
	return color.RGBA{R: channelFromKS(ks.R), G: channelFromKS(ks.G), B: channelFromKS(ks.B), A: 255}
}

// Mix blends a and b in K/S space. ratio is the weight of a: 1 yields a,
// 0 yields b. ratio is clamped to [0,1].
func Mix(a, b color.RGBA, ratio float64) color.RGBA {
	ratio = math.Max(0, math.Min(1, ratio))
	ka, kb := ToKS(a), ToKS(b)
	return FromKS(KS{
		R: ka.R*ratio + kb.R*(1-ratio),
		G: ka.G*ratio + kb.G*(1-ratio),
		B: ka.B*ratio + kb.B*(1-ratio),
	})
}

// MixPercent is Mix with the weight of a given as a percentage.
func MixPercent(a, b color.RGBA, pct int) color.RGBA {
	return Mix(a, b, float64(pct)/100)
}
