package preview

import "relief3d/internal/surface"

// sampleTexture performs bilinear filtering with UVs clamped to [0,1].
// v = 1 is the top row. Accesses tex.Pix directly for performance.
func sampleTexture(tex *surface.Image, u, v float64) (r, g, b, a uint8) {
	w := tex.Width
	h := tex.Height

	u = clampUnit(u)
	v = clampUnit(1 - v)

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := min(x0+1, w-1)
	y1 := min(y0+1, h-1)
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	pix := tex.Pix

	// Four texels
	i00 := tex.Offset(x0, y0)
	i10 := tex.Offset(x1, y0)
	i01 := tex.Offset(x0, y1)
	i11 := tex.Offset(x1, y1)

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	fr := float64(pix[i00])*w00 + float64(pix[i10])*w10 + float64(pix[i01])*w01 + float64(pix[i11])*w11
	fg := float64(pix[i00+1])*w00 + float64(pix[i10+1])*w10 + float64(pix[i01+1])*w01 + float64(pix[i11+1])*w11
	fb := float64(pix[i00+2])*w00 + float64(pix[i10+2])*w10 + float64(pix[i01+2])*w01 + float64(pix[i11+2])*w11
	fa := float64(pix[i00+3])*w00 + float64(pix[i10+3])*w10 + float64(pix[i01+3])*w01 + float64(pix[i11+3])*w11

	return uint8(fr + 0.5), uint8(fg + 0.5), uint8(fb + 0.5), uint8(fa + 0.5)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
