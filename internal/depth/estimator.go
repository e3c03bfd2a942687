// Package depth turns an RGBA raster into a relative depth field using
// edge, brightness and radial heuristics followed by a low-pass blur.
package depth

import (
	"fmt"
	"math"

	"relief3d/internal/surface"
)

// Fixed heuristic weights.
const (
	baseDepth        = 0.5
	radialWeight     = 0.3 // centred content is closer
	brightnessWeight = 0.3 // brighter content is closer
	edgeWeight       = 0.1

	// DefaultBlurSigma is the smoothing standard deviation in pixels.
	DefaultBlurSigma = 4.0

	// Sigmas below minBlurSigma leave every off-centre tap at zero weight,
	// so they are treated as no blur.
	minBlurSigma = 1e-3
	// MaxBlurSigma bounds the kernel radius.
	MaxBlurSigma = 1024.0
)

// Estimator converts images into depth fields. The zero value does not blur;
// use NewEstimator for the default smoothing.
type Estimator struct {
	BlurSigma float64
}

// NewEstimator returns an Estimator with the default smoothing.
func NewEstimator() *Estimator {
	return &Estimator{BlurSigma: DefaultBlurSigma}
}

// Estimate computes the depth field for img. It is a pure function of img
// and the estimator settings.
func (e *Estimator) Estimate(img *surface.Image) (*surface.DepthField, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	if !(e.BlurSigma >= 0 && e.BlurSigma <= MaxBlurSigma) {
		return nil, fmt.Errorf("depth: blur sigma %v: %w", e.BlurSigma, surface.ErrInvalidInput)
	}

	df := rawDepth(img)
	if e.BlurSigma >= minBlurSigma {
		df = gaussianBlur(df, e.BlurSigma)
	}
	return df, nil
}

// rawDepth combines the heuristics without smoothing.
func rawDepth(img *surface.Image) *surface.DepthField {
	w, h := img.Width, img.Height
	luma := luminance(img)
	edges := sobelMagnitude(img)

	cx := float64(w) / 2
	cy := float64(h) / 2
	maxDist := math.Sqrt(cx*cx + cy*cy)

	df := surface.NewDepthField(w, h)
	for y := 0; y < h; y++ {
		dy := float64(y) - cy
		row := y * w
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			radial := math.Sqrt(dx*dx+dy*dy) / maxDist
			if radial > 1 {
				radial = 1
			}
			i := row + x
			d := baseDepth +
				radialWeight*(1-radial) +
				brightnessWeight*luma[i] +
				edgeWeight*(edges[i]/255)
			df.Data[i] = clamp01(d)
		}
	}
	return df
}

// luminance returns mean(R,G,B)/255 per pixel.
func luminance(img *surface.Image) []float64 {
	out := make([]float64, img.Width*img.Height)
	pix := img.Pix
	for i := range out {
		p := i * 4
		out[i] = (float64(pix[p]) + float64(pix[p+1]) + float64(pix[p+2])) / 3 / 255
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
