package depth

import (
	"math"

	"relief3d/internal/surface"
)

// sobelMagnitude returns the clamped Sobel gradient magnitude of the
// channel-mean image, in [0,255]. Border pixels have no full neighbourhood
// and keep a magnitude of zero.
func sobelMagnitude(img *surface.Image) []float64 {
	w, h := img.Width, img.Height
	out := make([]float64, w*h)
	if w < 3 || h < 3 {
		return out
	}

	mean := make([]float64, w*h)
	pix := img.Pix
	for i := range mean {
		p := i * 4
		mean[i] = (float64(pix[p]) + float64(pix[p+1]) + float64(pix[p+2])) / 3
	}

	for y := 1; y < h-1; y++ {
		up := (y - 1) * w
		row := y * w
		down := (y + 1) * w
		for x := 1; x < w-1; x++ {
			tl, t, tr := mean[up+x-1], mean[up+x], mean[up+x+1]
			l, r := mean[row+x-1], mean[row+x+1]
			bl, b, br := mean[down+x-1], mean[down+x], mean[down+x+1]

			gx := -tl - 2*l - bl + tr + 2*r + br
			gy := -tl - 2*t - tr + bl + 2*b + br

			out[row+x] = math.Min(255, math.Sqrt(gx*gx+gy*gy))
		}
	}
	return out
}
