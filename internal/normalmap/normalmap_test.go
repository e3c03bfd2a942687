package normalmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"relief3d/internal/surface"
)

func planeField(w, h int, base, sx, sy float64) *surface.DepthField {
	df := surface.NewDepthField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			df.Data[y*w+x] = base + sx*float64(x) + sy*float64(y)
		}
	}
	return df
}

func TestSynthesizeFlatFieldFacesViewer(t *testing.T) {
	nm, err := Synthesize(planeField(6, 5, 0.6, 0, 0))
	require.NoError(t, err)
	require.Len(t, nm.Pix, 6*5*4)
	for i := 0; i < len(nm.Pix); i += 4 {
		assert.Equal(t, []uint8{128, 128, 255, 255}, nm.Pix[i:i+4], "pixel %d", i/4)
	}
}

func TestSynthesizeInteriorUnitLength(t *testing.T) {
	nm, err := Synthesize(planeField(32, 24, 0.4, 0.002, 0.001))
	require.NoError(t, err)
	for y := 1; y < nm.Height-1; y++ {
		for x := 1; x < nm.Width-1; x++ {
			assert.InDelta(t, 1.0, r3.Norm(nm.Normal(x, y)), 1e-3, "pixel (%d,%d)", x, y)
		}
	}
}

func TestSynthesizeSteepSlope(t *testing.T) {
	nm, err := Synthesize(planeField(10, 10, 0, 0.05, 0))
	require.NoError(t, err)

	n := nm.Normal(5, 5)
	assert.InDelta(t, 1.0, r3.Norm(n), 1e-2)
	assert.Greater(t, n.X, 0.15)
	assert.InDelta(t, 0.0, n.Y, 1e-2)

	// clamp-to-edge halves the difference on the border column
	edge := nm.Normal(0, 5)
	assert.Greater(t, edge.X, 0.0)
	assert.Less(t, edge.X, n.X)
	assert.InDelta(t, 1.0, r3.Norm(edge), 1e-2)
}

func TestSynthesizeDownwardSlopeEncodesGreen(t *testing.T) {
	nm, err := Synthesize(planeField(8, 8, 0, 0, 0.05))
	require.NoError(t, err)
	i := (4*8 + 4) * 4
	assert.Greater(t, nm.Pix[i+1], uint8(140))
	assert.Equal(t, uint8(128), nm.Pix[i])
	assert.Equal(t, uint8(255), nm.Pix[i+3])
}

func TestSynthesizeDeterministic(t *testing.T) {
	df := planeField(20, 12, 0.3, 0.01, -0.004)
	a, err := Synthesize(df)
	require.NoError(t, err)
	b, err := Synthesize(df)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestSynthesizeInvalidInput(t *testing.T) {
	for _, size := range [][2]int{{2, 5}, {5, 2}, {1, 1}} {
		_, err := Synthesize(planeField(size[0], size[1], 0.5, 0, 0))
		assert.ErrorIs(t, err, surface.ErrInvalidInput, "size %v", size)
	}
	_, err := Synthesize(nil)
	assert.ErrorIs(t, err, surface.ErrInvalidInput)
}

func TestNRGBAView(t *testing.T) {
	nm, err := Synthesize(planeField(4, 3, 0.5, 0, 0))
	require.NoError(t, err)
	img := nm.NRGBA()
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	assert.Equal(t, uint8(255), img.NRGBAAt(3, 2).A)
}
