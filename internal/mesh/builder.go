// Package mesh displaces a subdivided plane by a depth field.
package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"relief3d/internal/surface"
)

// Defaults for Build.
const (
	DefaultSegments          = 128
	DefaultDisplacementScale = 0.5
)

// Vertex is one grid sample of the displaced plane.
type Vertex struct {
	Position r3.Vec
	Normal   r3.Vec
	UV       [2]float64
}

// Mesh is a (SegX+1)×(SegY+1) vertex grid plus its triangulation.
// Vertices are stored row by row starting at the top edge (y = +aspect).
type Mesh struct {
	SegX     int
	SegY     int
	Vertices []Vertex
	Indices  []uint32 // three per triangle, counter-clockwise seen from +z
}

// Options controls the plane subdivision and displacement.
type Options struct {
	SegX  int
	SegY  int
	Scale float64
}

// DefaultOptions returns 128×128 segments with displacement scale 0.5.
func DefaultOptions() Options {
	return Options{SegX: DefaultSegments, SegY: DefaultSegments, Scale: DefaultDisplacementScale}
}

// Build creates the displaced mesh for df. The plane spans x∈[-1,1] and
// y∈[-aspect,aspect] with aspect = H/W.
func Build(df *surface.DepthField, opts Options) (*Mesh, error) {
	if df.Empty() {
		return nil, fmt.Errorf("mesh: empty depth field: %w", surface.ErrInvalidInput)
	}
	if opts.SegX < 1 || opts.SegY < 1 {
		return nil, fmt.Errorf("mesh: segments %dx%d: %w", opts.SegX, opts.SegY, surface.ErrInvalidInput)
	}

	aspect := float64(df.Height) / float64(df.Width)
	gridX1 := opts.SegX + 1
	gridY1 := opts.SegY + 1
	segW := 2.0 / float64(opts.SegX)
	segH := 2 * aspect / float64(opts.SegY)

	m := &Mesh{
		SegX:     opts.SegX,
		SegY:     opts.SegY,
		Vertices: make([]Vertex, 0, gridX1*gridY1),
		Indices:  make([]uint32, 0, opts.SegX*opts.SegY*6),
	}

	for iy := 0; iy < gridY1; iy++ {
		y := aspect - float64(iy)*segH
		if iy == opts.SegY {
			y = -aspect
		}
		for ix := 0; ix < gridX1; ix++ {
			x := -1 + float64(ix)*segW
			if ix == opts.SegX {
				x = 1
			}
			z := sampleNearest(df, x, y) * opts.Scale
			m.Vertices = append(m.Vertices, Vertex{
				Position: r3.Vec{X: x, Y: y, Z: z},
				UV:       [2]float64{float64(ix) / float64(opts.SegX), 1 - float64(iy)/float64(opts.SegY)},
			})
		}
	}

	for iy := 0; iy < opts.SegY; iy++ {
		for ix := 0; ix < opts.SegX; ix++ {
			a := uint32(ix + gridX1*iy)
			b := uint32(ix + gridX1*(iy+1))
			c := uint32(ix + 1 + gridX1*(iy+1))
			d := uint32(ix + 1 + gridX1*iy)
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}

	computeNormals(m)
	return m, nil
}

// sampleNearest maps plane (x, y) to pixel coordinates and returns the
// depth of the nearest lower-left pixel. Plane top maps to image row 0.
func sampleNearest(df *surface.DepthField, x, y float64) float64 {
	u := x/2 + 0.5
	v := 1 - (y/2 + 0.5)
	px := clampInt(int(math.Floor(u*float64(df.Width-1))), 0, df.Width-1)
	py := clampInt(int(math.Floor(v*float64(df.Height-1))), 0, df.Height-1)
	return df.At(px, py)
}

// VertexAt returns the vertex in grid column ix and row iy.
func (m *Mesh) VertexAt(ix, iy int) Vertex {
	return m.Vertices[iy*(m.SegX+1)+ix]
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Flat returns interleaved float32 buffers ready for upload by a renderer.
func (m *Mesh) Flat() (positions, normals, uvs []float32, indices []uint32) {
	n := len(m.Vertices)
	positions = make([]float32, 0, n*3)
	normals = make([]float32, 0, n*3)
	uvs = make([]float32, 0, n*2)
	for _, v := range m.Vertices {
		positions = append(positions, float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z))
		normals = append(normals, float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z))
		uvs = append(uvs, float32(v.UV[0]), float32(v.UV[1]))
	}
	indices = append([]uint32(nil), m.Indices...)
	return positions, normals, uvs, indices
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
