package depth

import (
	"math"

	"relief3d/internal/surface"
)

// gaussianKernel returns normalised weights for offsets -r..r, r = ceil(3σ).
func gaussianKernel(sigma float64) []float64 {
	r := int(math.Ceil(3 * sigma))
	if r < 1 {
		r = 1
	}
	k := make([]float64, 2*r+1)
	var sum float64
	inv := 1 / (2 * sigma * sigma)
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) * inv)
		k[i+r] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// gaussianBlur smooths df with a separable Gaussian. Samples outside the
// field are clamped to the nearest edge, so the output stays within the
// input range.
func gaussianBlur(df *surface.DepthField, sigma float64) *surface.DepthField {
	w, h := df.Width, df.Height
	k := gaussianKernel(sigma)
	r := len(k) / 2

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var acc float64
			for i := -r; i <= r; i++ {
				sx := clampInt(x+i, 0, w-1)
				acc += df.Data[row+sx] * k[i+r]
			}
			tmp[row+x] = acc
		}
	}

	out := surface.NewDepthField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i := -r; i <= r; i++ {
				sy := clampInt(y+i, 0, h-1)
				acc += tmp[sy*w+x] * k[i+r]
			}
			out.Data[y*w+x] = clamp01(acc)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
