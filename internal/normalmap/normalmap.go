// Package normalmap derives tangent-space normal maps from depth fields.
package normalmap

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"relief3d/internal/surface"
)

// gradientGain scales the central differences before normalisation.
const gradientGain = 2.0

// NormalMap holds packed normals as RGBA8, alpha always 255.
// Channels encode (nx*0.5+0.5, ny*0.5+0.5, nz) scaled to [0,255].
type NormalMap struct {
	Width  int
	Height int
	Pix    []uint8
}

// Synthesize computes the normal map of df. Border pixels use
// clamp-to-edge neighbours, so every pixel carries a unit normal.
func Synthesize(df *surface.DepthField) (*NormalMap, error) {
	if df.Empty() {
		return nil, fmt.Errorf("normalmap: empty depth field: %w", surface.ErrInvalidInput)
	}
	w, h := df.Width, df.Height
	if w < 3 || h < 3 {
		return nil, fmt.Errorf("normalmap: field %dx%d smaller than 3x3: %w", w, h, surface.ErrInvalidInput)
	}

	nm := &NormalMap{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
	for y := 0; y < h; y++ {
		up := max(y-1, 0)
		down := min(y+1, h-1)
		for x := 0; x < w; x++ {
			left := max(x-1, 0)
			right := min(x+1, w-1)

			n := r3.Unit(r3.Vec{
				X: (df.At(right, y) - df.At(left, y)) * gradientGain,
				Y: (df.At(x, down) - df.At(x, up)) * gradientGain,
				Z: 1,
			})

			i := (y*w + x) * 4
			nm.Pix[i] = pack(n.X*0.5 + 0.5)
			nm.Pix[i+1] = pack(n.Y*0.5 + 0.5)
			nm.Pix[i+2] = pack(n.Z)
			nm.Pix[i+3] = 255
		}
	}
	return nm, nil
}

// Normal unpacks the normal stored at (x, y).
func (nm *NormalMap) Normal(x, y int) r3.Vec {
	i := (y*nm.Width + x) * 4
	return r3.Vec{
		X: float64(nm.Pix[i])/255*2 - 1,
		Y: float64(nm.Pix[i+1])/255*2 - 1,
		Z: float64(nm.Pix[i+2]) / 255,
	}
}

// NRGBA returns a view of the map sharing its pixels.
func (nm *NormalMap) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    nm.Pix,
		Stride: nm.Width * 4,
		Rect:   image.Rect(0, 0, nm.Width, nm.Height),
	}
}

func pack(v float64) uint8 {
	v = math.Round(v * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
