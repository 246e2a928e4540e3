package canvas

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/morningpaint/internal/tile"
)

// DefaultHistoryDepth is the number of undo snapshots kept.
const DefaultHistoryDepth = 100

// Snapshot is the state of the permanent store before one change.
type Snapshot struct {
	ID uuid.UUID
	// Reason names what the snapshot guards: a brush id or "reset".
	Reason string
	Taken  time.Time
	tiles  *tile.Store
}

// Tiles returns the number of tiles captured.
func (s Snapshot) Tiles() int { return s.tiles.Len() }

// History is a bounded stack of snapshots. The oldest entry is dropped once
// the depth is reached.
type History struct {
	depth   int
	entries []Snapshot
}

// NewHistory returns an empty history holding at most depth entries.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Capture deep copies store and pushes it.
func (h *History) Capture(store *tile.Store, reason string) Snapshot {
	s := Snapshot{ID: uuid.New(), Reason: reason, Taken: time.Now(), tiles: store.Clone()}
	h.push(s)
	return s
}

func (h *History) push(s Snapshot) {
	if len(h.entries) >= h.depth {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, s)
}

// Pop removes and returns the newest snapshot.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return Snapshot{}, false
	}
	s := h.entries[len(h.entries)-1]
	h.entries[len(h.entries)-1] = Snapshot{}
	h.entries = h.entries[:len(h.entries)-1]
	return s, true
}

// Len returns the number of snapshots.
func (h *History) Len() int { return len(h.entries) }

// Entries returns the snapshots oldest first.
func (h *History) Entries() []Snapshot {
	out := make([]Snapshot, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear drops every snapshot.
func (h *History) Clear() { h.entries = nil }
