package grain

import "testing"

func TestFieldRangeAndWrap(t *testing.T) {
	f := New(1)
	for y := 0; y < Size; y += 7 {
		for x := 0; x < Size; x += 5 {
			v := f.At(float64(x), float64(y))
			if v < 0.3 || v > 0.7 {
				t.Fatalf("At(%d,%d) = %v out of range", x, y, v)
			}
			if w := f.At(float64(x-Size), float64(y+3*Size)); w != v {
				t.Fatalf("wrap mismatch at (%d,%d): %v vs %v", x, y, w, v)
			}
		}
	}
	if f.At(-0.5, 0) != f.At(Size-1, 0) {
		t.Fatalf("negative coordinates do not floor")
	}
}

func TestDefaultIsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default rebuilt the field")
	}
	a, b := New(42), New(42)
	if a.At(3, 9) != b.At(3, 9) {
		t.Fatal("same seed produced different fields")
	}
}
