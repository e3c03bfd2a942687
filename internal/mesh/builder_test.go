package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"relief3d/internal/surface"
)

func rampField(w, h int) *surface.DepthField {
	df := surface.NewDepthField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			df.Data[y*w+x] = float64(x+y*w) / float64(w*h)
		}
	}
	return df
}

func TestBuildSingleQuadCorners(t *testing.T) {
	df := rampField(5, 5)
	m, err := Build(df, Options{SegX: 1, SegY: 1, Scale: 0.5})
	require.NoError(t, err)
	require.Len(t, m.Vertices, 4)
	assert.Equal(t, 2, m.TriangleCount())

	tests := []struct {
		ix, iy int
		x, y   float64
		px, py int
	}{
		{0, 0, -1, 1, 0, 0},
		{1, 0, 1, 1, 4, 0},
		{0, 1, -1, -1, 0, 4},
		{1, 1, 1, -1, 4, 4},
	}
	for _, tt := range tests {
		v := m.VertexAt(tt.ix, tt.iy)
		assert.Equal(t, tt.x, v.Position.X)
		assert.Equal(t, tt.y, v.Position.Y)
		assert.Equal(t, df.At(tt.px, tt.py)*0.5, v.Position.Z, "corner (%d,%d)", tt.ix, tt.iy)
	}
}

func TestBuildGridShape(t *testing.T) {
	df := rampField(40, 20)
	m, err := Build(df, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 129*129)
	assert.Len(t, m.Indices, 128*128*6)

	aspect := 0.5
	first := m.VertexAt(0, 0).Position
	last := m.VertexAt(128, 128).Position
	assert.Equal(t, r3.Vec{X: -1, Y: aspect, Z: first.Z}, first)
	assert.Equal(t, r3.Vec{X: 1, Y: -aspect, Z: last.Z}, last)

	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}
}

func TestBuildFlatFieldNormalsPointUp(t *testing.T) {
	df := surface.NewDepthField(8, 8)
	for i := range df.Data {
		df.Data[i] = 0.7
	}
	m, err := Build(df, Options{SegX: 4, SegY: 4, Scale: 0.5})
	require.NoError(t, err)
	for i, v := range m.Vertices {
		assert.InDelta(t, 0.35, v.Position.Z, 1e-12)
		assert.InDelta(t, 1.0, v.Normal.Z, 1e-12, "vertex %d", i)
	}
}

func TestBuildNormalsAreUnitAndTiltAwayFromSlope(t *testing.T) {
	df := surface.NewDepthField(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			df.Data[y*16+x] = float64(x) / 15
		}
	}
	m, err := Build(df, Options{SegX: 8, SegY: 8, Scale: 0.5})
	require.NoError(t, err)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1.0, r3.Norm(v.Normal), 1e-9)
	}
	// depth grows with x, so the surface faces -x
	assert.Less(t, m.VertexAt(4, 4).Normal.X, 0.0)
}

func TestBuildDeterministic(t *testing.T) {
	df := rampField(30, 17)
	a, err := Build(df, Options{SegX: 12, SegY: 7, Scale: 0.5})
	require.NoError(t, err)
	b, err := Build(df, Options{SegX: 12, SegY: 7, Scale: 0.5})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildFlat(t *testing.T) {
	m, err := Build(rampField(4, 4), Options{SegX: 2, SegY: 3, Scale: 1})
	require.NoError(t, err)
	pos, nrm, uv, idx := m.Flat()
	assert.Len(t, pos, 12*3)
	assert.Len(t, nrm, 12*3)
	assert.Len(t, uv, 12*2)
	assert.Equal(t, m.Indices, idx)
	assert.Equal(t, []float32{0, 1}, uv[:2])
}

func TestBuildInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		df   *surface.DepthField
		opts Options
	}{
		{"nil field", nil, DefaultOptions()},
		{"empty field", &surface.DepthField{}, DefaultOptions()},
		{"zero segX", rampField(3, 3), Options{SegX: 0, SegY: 4, Scale: 1}},
		{"zero segY", rampField(3, 3), Options{SegX: 4, SegY: 0, Scale: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.df, tt.opts)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, surface.ErrInvalidInput)
		})
	}
}
