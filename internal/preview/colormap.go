package preview

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"relief3d/internal/surface"
)

// Colormap stops from far (depth 0) to near (depth 1), blended in Lab.
var depthStops = []colorful.Color{
	{R: 0.05, G: 0.03, B: 0.20},
	{R: 0.18, G: 0.35, B: 0.65},
	{R: 0.40, G: 0.78, B: 0.62},
	{R: 0.98, G: 0.90, B: 0.35},
}

// DepthColormap renders df with a perceptual colormap.
func DepthColormap(df *surface.DepthField) *image.NRGBA {
	var lut [256][3]uint8
	for i := range lut {
		lut[i] = rampColor(float64(i) / 255)
	}

	img := image.NewNRGBA(image.Rect(0, 0, df.Width, df.Height))
	gray := df.Gray()
	for i, g := range gray.Pix {
		c := lut[g]
		img.Pix[i*4] = c[0]
		img.Pix[i*4+1] = c[1]
		img.Pix[i*4+2] = c[2]
		img.Pix[i*4+3] = 255
	}
	return img
}

func rampColor(t float64) [3]uint8 {
	segs := float64(len(depthStops) - 1)
	pos := t * segs
	k := int(pos)
	if k >= len(depthStops)-1 {
		k = len(depthStops) - 2
	}
	c := depthStops[k].BlendLab(depthStops[k+1], pos-float64(k)).Clamped()
	r, g, b := c.RGB255()
	return [3]uint8{r, g, b}
}
