package raster

import "image"

// Composite blends src over dst at a uniform alpha. Both are premultiplied
// rasters of identical bounds. Each destination pixel becomes
// src·alpha + dst·(1 − srcα·alpha), so the result never carries more than
// alpha of src no matter how src was built up.
func Composite(dst, src *image.RGBA, alpha float64) {
	alpha = Clamp01(alpha)
	if alpha == 0 {
		return
	}
	r := dst.Bounds().Intersect(src.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := src.PixOffset(r.Min.X, y)
		di := dst.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, si, di = x+1, si+4, di+4 {
			sa := src.Pix[si+3]
			if sa == 0 {
				continue
			}
			k := 1 - float64(sa)/255*alpha
			s := src.Pix[si : si+4 : si+4]
			d := dst.Pix[di : di+4 : di+4]
			d[0] = clampByte(float64(s[0])*alpha + float64(d[0])*k)
			d[1] = clampByte(float64(s[1])*alpha + float64(d[1])*k)
			d[2] = clampByte(float64(s[2])*alpha + float64(d[2])*k)
			d[3] = clampByte(float64(s[3])*alpha + float64(d[3])*k)
		}
	}
}

// Tint writes color c at each pixel's mask alpha into dst, replacing what
// was there. mask and dst must share bounds.
func Tint(dst *image.RGBA, mask *image.Alpha, c [3]uint8) {
	r := dst.Bounds().Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		mi := mask.PixOffset(r.Min.X, y)
		di := dst.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, mi, di = x+1, mi+1, di+4 {
			a := mask.Pix[mi]
			d := dst.Pix[di : di+4 : di+4]
			if a == 0 {
				d[0], d[1], d[2], d[3] = 0, 0, 0, 0
				continue
			}
			d[0] = uint8(uint32(c[0]) * uint32(a) / 255)
			d[1] = uint8(uint32(c[1]) * uint32(a) / 255)
			d[2] = uint8(uint32(c[2]) * uint32(a) / 255)
			d[3] = a
		}
	}
}
