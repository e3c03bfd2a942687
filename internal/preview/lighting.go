package preview

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LightConfig holds precomputed lighting parameters in view space
// (+z towards the viewer).
type LightConfig struct {
	LightDir r3.Vec
	RimDir   r3.Vec
	HalfMain r3.Vec // precomputed half-vector for Blinn-Phong
	Ambient  float64
	Direct   float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig returns a key light from the upper left and a weak rim
// light from behind.
func DefaultLightConfig() LightConfig {
	lightDir := r3.Unit(r3.Vec{X: -0.45, Y: 0.65, Z: 0.6})
	rimDir := r3.Unit(r3.Vec{X: 0.4, Y: 0.3, Z: -0.5})
	viewDir := r3.Vec{Z: 1}

	return LightConfig{
		LightDir: lightDir,
		RimDir:   rimDir,
		HalfMain: r3.Unit(r3.Add(lightDir, viewDir)),
		Ambient:  0.35,
		Direct:   0.9,
		Rim:      0.25,
		SpecInt:  0.2,
		SpecPow:  16.0,
		Exposure: 1.1,
		InvGamma: 1.0 / 2.2,
	}
}

// Shade returns the combined lighting scalar for a unit normal.
func (lc *LightConfig) Shade(normal r3.Vec) float64 {
	ndl := math.Max(0, r3.Dot(normal, lc.LightDir))
	rim := math.Abs(r3.Dot(normal, lc.RimDir))

	ndh := math.Max(0, r3.Dot(normal, lc.HalfMain))
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + ndl*lc.Direct + rim*lc.Rim + spec
}

// Apply lights an sRGB color with the given shade, tone maps it and
// returns sRGB bytes.
func (lc *LightConfig) Apply(r, g, b uint8, shade float64) (uint8, uint8, uint8) {
	k := shade * lc.Exposure
	tr := acesTonemap(srgbToLinear[r] * k)
	tg := acesTonemap(srgbToLinear[g] * k)
	tb := acesTonemap(srgbToLinear[b] * k)
	return clamp255(math.Pow(tr, lc.InvGamma) * 255),
		clamp255(math.Pow(tg, lc.InvGamma) * 255),
		clamp255(math.Pow(tb, lc.InvGamma) * 255)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// acesTonemap applies ACES Filmic tone mapping to a linear value.
func acesTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
