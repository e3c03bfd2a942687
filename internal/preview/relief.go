package preview

import (
	"image"

	"relief3d/internal/reconstruct"
)

// RenderMapped lights the texture of a normal-mapped surface with its
// normal map, seen head-on. The result has the texture's size and alpha.
func RenderMapped(ms *reconstruct.MappedSurface) *image.NRGBA {
	tex := ms.Texture
	nm := ms.NormalMap
	lc := DefaultLightConfig()

	img := image.NewNRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	for y := 0; y < tex.Height; y++ {
		for x := 0; x < tex.Width; x++ {
			n := nm.Normal(x, y)
			// normal map rows grow downward; flip into view space
			n.Y = -n.Y

			i := tex.Offset(x, y)
			r, g, b := lc.Apply(tex.Pix[i], tex.Pix[i+1], tex.Pix[i+2], lc.Shade(n))
			o := img.PixOffset(x, y)
			img.Pix[o] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = tex.Pix[i+3]
		}
	}
	return img
}
