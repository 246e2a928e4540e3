package persist

import (
	"slices"

	"github.com/example/morningpaint/internal/tile"
)

// sortedCoords orders keys by row then column so archives are reproducible.
func sortedCoords(m map[tile.Coord][]byte) []tile.Coord {
	out := make([]tile.Coord, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b tile.Coord) int {
		if a.Y != b.Y {
			return int(a.Y) - int(b.Y)
		}
		return int(a.X) - int(b.X)
	})
	return out
}
