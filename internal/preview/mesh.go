package preview

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"relief3d/internal/mesh"
	"relief3d/internal/surface"
)

// defaultR/G/B is the surface color used when no texture is given.
const (
	defaultR = 160
	defaultG = 160
	defaultB = 170
)

// screenVertex is a projected vertex with its lit color.
type screenVertex struct {
	x, y, z float64
	u, v    float64
	shade   float64
}

// RenderMesh draws m textured with tex (may be nil) using Gouraud shading.
func RenderMesh(m *mesh.Mesh, tex *surface.Image, opts Options) *image.NRGBA {
	opts = opts.normalized()
	renderSize := opts.Size * opts.Supersample

	pts := make([]r3.Vec, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = v.Position
	}
	cam := fitCamera(pts, opts.TiltDeg, renderSize, opts.Margin*opts.Supersample)
	lc := DefaultLightConfig()

	sv := make([]screenVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		x, y, z := cam.project(v.Position)
		sv[i] = screenVertex{
			x: x, y: y, z: z,
			u: v.UV[0], v: v.UV[1],
			shade: lc.Shade(cam.rotate(v.Normal)),
		}
	}

	fb := NewFrameBuffer(renderSize, renderSize)
	for t := 0; t+2 < len(m.Indices); t += 3 {
		rasterizeTriangle(fb, sv[m.Indices[t]], sv[m.Indices[t+1]], sv[m.Indices[t+2]], tex, &lc)
	}

	return Downsample(fb.Image(), opts.Size)
}

// rasterizeTriangle fills one triangle with barycentric interpolation of
// depth, UV and shade. Both windings are drawn.
func rasterizeTriangle(fb *FrameBuffer, a, b, c screenVertex, tex *surface.Image, lc *LightConfig) {
	minX := int(math.Floor(math.Min(math.Min(a.x, b.x), c.x)))
	maxX := int(math.Ceil(math.Max(math.Max(a.x, b.x), c.x)))
	minY := int(math.Floor(math.Min(math.Min(a.y, b.y), c.y)))
	maxY := int(math.Ceil(math.Max(math.Max(a.y, b.y), c.y)))

	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (b.y-c.y)*(a.x-c.x) + (c.x-b.x)*(a.y-c.y)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := b.y - c.y
	dx21 := c.x - b.x
	dy20 := c.y - a.y
	dx02 := a.x - c.x

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - c.y
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - c.x
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*a.z + w1*b.z + w2*c.z
			if !fb.DepthTest(sx, sy, z) {
				continue
			}

			cr, cg, cb := uint8(defaultR), uint8(defaultG), uint8(defaultB)
			if tex != nil {
				u := w0*a.u + w1*b.u + w2*c.u
				v := w0*a.v + w1*b.v + w2*c.v
				cr, cg, cb, _ = sampleTexture(tex, u, v)
			}
			shade := w0*a.shade + w1*b.shade + w2*c.shade
			r, g, bl := lc.Apply(cr, cg, cb, shade)
			fb.Put(sx, sy, r, g, bl)
		}
	}
}
