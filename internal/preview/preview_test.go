package preview

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"relief3d/internal/mesh"
	"relief3d/internal/normalmap"
	"relief3d/internal/pointcloud"
	"relief3d/internal/reconstruct"
	"relief3d/internal/surface"
)

func flatField(w, h int, v float64) *surface.DepthField {
	df := surface.NewDepthField(w, h)
	for i := range df.Data {
		df.Data[i] = v
	}
	return df
}

func solid(t *testing.T, w, h int, c color.NRGBA) *surface.Image {
	t.Helper()
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	img, err := surface.NewImage(w, h, pix)
	require.NoError(t, err)
	return img
}

func TestFrameBufferDepthTest(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	assert.True(t, fb.DepthTest(1, 1, -5))
	assert.False(t, fb.DepthTest(1, 1, -6))
	assert.True(t, fb.DepthTest(1, 1, 2))
	assert.False(t, fb.DepthTest(4, 0, 10))
	assert.False(t, fb.DepthTest(0, -1, 10))

	fb.Put(2, 1, 10, 20, 30)
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, fb.Image().NRGBAAt(2, 1))
	assert.Equal(t, uint8(0), fb.Image().NRGBAAt(0, 0).A)
}

func TestRenderMeshCoversCenter(t *testing.T) {
	m, err := mesh.Build(flatField(8, 8, 0.5), mesh.Options{SegX: 4, SegY: 4, Scale: 0.5})
	require.NoError(t, err)

	opts := Options{Size: 64, Supersample: 2, TiltDeg: -20, Margin: 4}
	img := RenderMesh(m, solid(t, 8, 8, color.NRGBA{200, 40, 40, 255}), opts)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())

	c := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), c.A)
	assert.Greater(t, c.R, c.G, "texture color survives shading")
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A, "margin stays transparent")

	untextured := RenderMesh(m, nil, opts)
	assert.Equal(t, uint8(255), untextured.NRGBAAt(32, 32).A)
}

func TestRenderPoints(t *testing.T) {
	cloud := &pointcloud.Cloud{
		Positions: []float32{-0.5, -0.5, 0, 0.5, 0.5, 0.1, 0, 0, 0.2},
		Colors:    []float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	img := RenderPoints(cloud, Options{Size: 32, Supersample: 1, Margin: 2})
	assert.Equal(t, 32, img.Bounds().Dx())

	var opaque int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			opaque++
		}
	}
	assert.Equal(t, 3, opaque)
}

func TestRenderMappedFlatKeepsAlpha(t *testing.T) {
	tex := solid(t, 5, 4, color.NRGBA{120, 120, 120, 77})
	nm, err := normalmap.Synthesize(flatField(5, 4, 0.5))
	require.NoError(t, err)

	img := RenderMapped(&reconstruct.MappedSurface{Texture: tex, NormalMap: nm})
	assert.Equal(t, image.Rect(0, 0, 5, 4), img.Bounds())
	c := img.NRGBAAt(2, 2)
	assert.Equal(t, uint8(77), c.A)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func TestShadeFacingLightIsBrightest(t *testing.T) {
	lc := DefaultLightConfig()
	toward := lc.Shade(lc.LightDir)
	away := lc.Shade(r3.Scale(-1, lc.LightDir))
	assert.Greater(t, toward, away)
	assert.GreaterOrEqual(t, away, lc.Ambient)
}

func TestDepthColormapEndpoints(t *testing.T) {
	df := surface.NewDepthField(2, 1)
	df.Data[0] = 0
	df.Data[1] = 1
	img := DepthColormap(df)

	far := img.NRGBAAt(0, 0)
	near := img.NRGBAAt(1, 0)
	assert.Equal(t, uint8(255), far.A)
	assert.Less(t, int(far.R)+int(far.G)+int(far.B), int(near.R)+int(near.G)+int(near.B))
	assert.Equal(t, rampColor(1), [3]uint8{near.R, near.G, near.B})
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 50, 100, 150, 255
	}
	dst := Downsample(src, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 4), dst.Bounds())
	c := dst.NRGBAAt(1, 1)
	assert.InDelta(t, 100, int(c.G), 1)
	assert.Equal(t, uint8(255), c.A)

	assert.Same(t, src, Downsample(src, 16))
}

func TestSampleTextureClampsAndFlips(t *testing.T) {
	pix := []uint8{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	tex, err := surface.NewImage(2, 2, pix)
	require.NoError(t, err)

	r, g, b, _ := sampleTexture(tex, 0, 1)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b}, "v=1 is the top row")
	r, g, b, _ = sampleTexture(tex, -3, -2)
	assert.Equal(t, [3]uint8{0, 0, 255}, [3]uint8{r, g, b})
}
