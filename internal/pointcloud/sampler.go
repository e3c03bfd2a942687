// Package pointcloud samples colored 3D points from an image and its depth field.
package pointcloud

import (
	"fmt"
	"math/rand/v2"

	"relief3d/internal/surface"
)

const (
	// DefaultCount is the number of points drawn when Options.Count is unset.
	DefaultCount = 20000
	// MaxCount is the largest accepted Options.Count.
	MaxCount = 1 << 24

	// attemptsPerPoint bounds rejection sampling to attemptsPerPoint*Count draws.
	attemptsPerPoint = 100

	// alphaThreshold rejects pixels with alpha/255 below 0.5.
	alphaThreshold = 0.5

	depthScale  = 0.5
	depthOffset = -0.25
)

// Cloud holds N positions and N colors, three float32 per entry.
type Cloud struct {
	Positions []float32
	Colors    []float32
}

// Len returns the number of points.
func (c *Cloud) Len() int {
	return len(c.Positions) / 3
}

// Options controls sampling. A nil Seed draws from a randomly seeded source.
type Options struct {
	Count int
	Seed  *uint64
}

// Sample draws opts.Count points with replacement from the opaque pixels of img.
func Sample(img *surface.Image, df *surface.DepthField, opts Options) (*Cloud, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("pointcloud: %w", err)
	}
	if df.Empty() || df.Width != img.Width || df.Height != img.Height {
		return nil, fmt.Errorf("pointcloud: depth field does not match %dx%d image: %w",
			img.Width, img.Height, surface.ErrInvalidInput)
	}
	if opts.Count <= 0 || opts.Count > MaxCount {
		return nil, fmt.Errorf("pointcloud: count %d: %w", opts.Count, surface.ErrInvalidInput)
	}

	rng := newRand(opts.Seed)
	w, h := img.Width, img.Height
	fw, fh := float64(w), float64(h)

	cloud := &Cloud{
		Positions: make([]float32, 0, opts.Count*3),
		Colors:    make([]float32, 0, opts.Count*3),
	}
	budget := attemptsPerPoint * opts.Count
	for attempts := 0; cloud.Len() < opts.Count; attempts++ {
		if attempts >= budget {
			return nil, fmt.Errorf("pointcloud: %d of %d points after %d attempts: %w",
				cloud.Len(), opts.Count, attempts, surface.ErrSamplingExhausted)
		}

		x := rng.IntN(w)
		y := rng.IntN(h)
		i := img.Offset(x, y)
		if float64(img.Pix[i+3])/255 < alphaThreshold {
			continue
		}

		cloud.Positions = append(cloud.Positions,
			float32(float64(x)/fw*2-1),
			float32(-(float64(y)/fh*2 - 1)),
			float32(df.At(x, y)*depthScale+depthOffset),
		)
		cloud.Colors = append(cloud.Colors,
			float32(img.Pix[i])/255,
			float32(img.Pix[i+1])/255,
			float32(img.Pix[i+2])/255,
		)
	}
	return cloud, nil
}

func newRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
}
