package raster

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/example/morningpaint/internal/tile"
)

// path is a set of closed subpaths in world space. Subpaths with the same
// winding union; opposite windings cut holes.
type path [][]Point

func (p path) bounds() image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sub := range p {
		for _, q := range sub {
			minX = math.Min(minX, q.X)
			minY = math.Min(minY, q.Y)
			maxX = math.Max(maxX, q.X)
			maxY = math.Max(maxY, q.Y)
		}
	}
	if minX > maxX || minY > maxY {
		return image.Rectangle{}
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// coverage rasterizes p into an alpha mask whose bounds are r in world space.
func (p path) coverage(r image.Rectangle) *image.Alpha {
	w, h := r.Dx(), r.Dy()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for _, sub := range p {
		if len(sub) < 3 {
			continue
		}
		z.MoveTo(float32(sub[0].X-ox), float32(sub[0].Y-oy))
		for _, q := range sub[1:] {
			z.LineTo(float32(q.X-ox), float32(q.Y-oy))
		}
		z.ClosePath()
	}
	mask := image.NewAlpha(r)
	z.Draw(mask, r, image.Opaque, image.Point{})
	return mask
}

// fill rasterizes p and blends it into dst with paint.
func fill(dst Surface, p path, paint Paint) error {
	if paint.Alpha <= 0 {
		return nil
	}
	r := p.bounds()
	if r.Empty() {
		return nil
	}
	var tiles []*tile.Tile
	if paint.Op == Erase {
		tiles = dst.TilesInRect(r)
		if len(tiles) == 0 {
			return nil
		}
	} else {
		var err error
		tiles, err = dst.EnsureRect(r)
		if err != nil {
			return err
		}
	}
	mask := p.coverage(r)
	for _, t := range tiles {
		inter := r.Intersect(t.WorldBounds())
		if inter.Empty() {
			continue
		}
		BlendMask(t.Image, t.Origin, mask, inter, paint)
	}
	return nil
}

// BlendMask blends paint through mask into img over the world rect r. img is
// a tile raster whose top-left pixel sits at world point origin; mask bounds
// are in world space.
func BlendMask(img *image.RGBA, origin image.Point, mask *image.Alpha, r image.Rectangle, paint Paint) {
	r = r.Intersect(mask.Bounds()).Intersect(img.Bounds().Add(origin))
	if r.Empty() {
		return
	}
	alpha := Clamp01(paint.Alpha)
	sr, sg, sb := float64(paint.Color.R), float64(paint.Color.G), float64(paint.Color.B)
	for wy := r.Min.Y; wy < r.Max.Y; wy++ {
		mi := mask.PixOffset(r.Min.X, wy)
		di := img.PixOffset(r.Min.X-origin.X, wy-origin.Y)
		for wx := r.Min.X; wx < r.Max.X; wx, mi, di = wx+1, mi+1, di+4 {
			m := mask.Pix[mi]
			if m == 0 {
				continue
			}
			sa := float64(m) / 255 * alpha
			if paint.Shader != nil {
				c := paint.Shader.At(float64(wx)+0.5, float64(wy)+0.5)
				if c.A == 0 {
					continue
				}
				sr, sg, sb = float64(c.R), float64(c.G), float64(c.B)
				sa *= float64(c.A) / 255
			}
			px := img.Pix[di : di+4 : di+4]
			inv := 1 - sa
			switch paint.Op {
			case Erase:
				px[0] = clampByte(float64(px[0]) * inv)
				px[1] = clampByte(float64(px[1]) * inv)
				px[2] = clampByte(float64(px[2]) * inv)
				px[3] = clampByte(float64(px[3]) * inv)
			default:
				px[0] = clampByte(sr*sa + float64(px[0])*inv)
				px[1] = clampByte(sg*sa + float64(px[1])*inv)
				px[2] = clampByte(sb*sa + float64(px[2])*inv)
				px[3] = clampByte(255*sa + float64(px[3])*inv)
			}
		}
	}
}
