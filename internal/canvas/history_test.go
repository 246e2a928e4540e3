package canvas

import (
	"testing"

	"github.com/example/morningpaint/internal/tile"
)

func TestHistoryDropsOldest(t *testing.T) {
	h := NewHistory(2)
	s := tile.New(16)
	a := h.Capture(s, "a")
	h.Capture(s, "b")
	h.Capture(s, "c")
	if h.Len() != 2 {
		t.Fatalf("len %d", h.Len())
	}
	for _, e := range h.Entries() {
		if e.ID == a.ID {
			t.Fatal("oldest snapshot kept")
		}
	}
	top, ok := h.Pop()
	if !ok || top.Reason != "c" {
		t.Fatalf("pop %+v %v", top, ok)
	}
	h.Clear()
	if _, ok := h.Pop(); ok {
		t.Fatal("pop after clear")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	h := NewHistory(0)
	s := tile.New(16)
	tl, err := s.Ensure(tile.C(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	snap := h.Capture(s, "x")
	tl.Image.Pix[3] = 255
	got, _ := snap.tiles.Get(tile.C(0, 0))
	if got.Image.Pix[3] != 0 {
		t.Fatal("snapshot shares pixels with the live store")
	}
}
