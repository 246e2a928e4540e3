// Package grain provides the paper texture height field brushes sample.
package grain

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Size is the edge length of the field. Lookups wrap every Size pixels.
const Size = 256

// DefaultSeed seeds the shared field so textures are stable across runs.
const DefaultSeed = 0x6d70616e74

// Field is a read-only tiling height field with values in [0.3, 0.7].
type Field struct {
	data [Size * Size]float32
}

// New builds a field from seed.
func New(seed uint64) *Field {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	f := &Field{}
	for i := range f.data {
		f.data[i] = float32(r.Float64()*0.4 + 0.3)
	}
	return f
}

// Default returns the process-wide field, built on first use.
var Default = sync.OnceValue(func() *Field { return New(DefaultSeed) })

// At samples the field at world position (x, y), wrapping in both axes.
func (f *Field) At(x, y float64) float64 {
	gx := wrap(int(math.Floor(x)))
	gy := wrap(int(math.Floor(y)))
	return float64(f.data[gy*Size+gx])
}

func wrap(v int) int {
	v %= Size
	if v < 0 {
		v += Size
	}
	return v
}
