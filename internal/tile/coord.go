package tile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coord addresses one tile of the infinite canvas.
type Coord struct {
	X, Y int32
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord { return Coord{X: int32(x), Y: int32(y)} }

// Pack folds both signed indices into one map key.
func (c Coord) Pack() uint64 {
	return uint64(uint32(c.X))<<32 | uint64(uint32(c.Y))
}

// Unpack is the inverse of Pack.
func Unpack(k uint64) Coord {
	return Coord{X: int32(uint32(k >> 32)), Y: int32(uint32(k))}
}

// String returns the persistence key form "tx,ty".
func (c Coord) String() string {
	return strconv.Itoa(int(c.X)) + "," + strconv.Itoa(int(c.Y))
}

// ParseKey parses a "tx,ty" persistence key.
func ParseKey(s string) (Coord, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Coord{}, fmt.Errorf("tile key %q: missing comma", s)
	}
	x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
	if err != nil {
		return Coord{}, fmt.Errorf("tile key %q: %w", s, err)
	}
	y, err := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
	if err != nil {
		return Coord{}, fmt.Errorf("tile key %q: %w", s, err)
	}
	return Coord{X: int32(x), Y: int32(y)}, nil
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CoordOfPixel returns the tile containing the world pixel (x, y).
func CoordOfPixel(x, y, size int) Coord {
	return Coord{X: int32(floorDiv(x, size)), Y: int32(floorDiv(y, size))}
}

// CoordOf returns the tile containing the world point (x, y).
func CoordOf(x, y float64, size int) Coord {
	return CoordOfPixel(int(math.Floor(x)), int(math.Floor(y)), size)
}
