package tile

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
)

// EncodePNG writes the tile raster as PNG.
func EncodePNG(w io.Writer, t *Tile) error {
	if err := png.Encode(w, t.Image); err != nil {
		return fmt.Errorf("encode tile %s: %w", t.Coord, err)
	}
	return nil
}

// DecodePNG reads a tile raster previously written by EncodePNG. The image
// must be exactly size×size.
func DecodePNG(r io.Reader, size int) (*image.RGBA, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != size || b.Dy() != size {
		return nil, fmt.Errorf("decode tile: got %dx%d, want %dx%d", b.Dx(), b.Dy(), size, size)
	}
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out, nil
}
