package preview

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"relief3d/internal/pointcloud"
)

// RenderPoints splats each point as a small square with a z-test.
// Colors are taken from the cloud unlit.
func RenderPoints(cloud *pointcloud.Cloud, opts Options) *image.NRGBA {
	opts = opts.normalized()
	renderSize := opts.Size * opts.Supersample

	n := cloud.Len()
	pts := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		pts[i] = r3.Vec{
			X: float64(cloud.Positions[i*3]),
			Y: float64(cloud.Positions[i*3+1]),
			Z: float64(cloud.Positions[i*3+2]),
		}
	}
	cam := fitCamera(pts, opts.TiltDeg, renderSize, opts.Margin*opts.Supersample)

	radius := opts.Supersample
	fb := NewFrameBuffer(renderSize, renderSize)
	for i, p := range pts {
		x, y, z := cam.project(p)
		cx := int(math.Floor(x))
		cy := int(math.Floor(y))
		r := clamp255(float64(cloud.Colors[i*3]) * 255)
		g := clamp255(float64(cloud.Colors[i*3+1]) * 255)
		b := clamp255(float64(cloud.Colors[i*3+2]) * 255)
		for dy := -radius + 1; dy < radius; dy++ {
			for dx := -radius + 1; dx < radius; dx++ {
				if fb.DepthTest(cx+dx, cy+dy, z) {
					fb.Put(cx+dx, cy+dy, r, g, b)
				}
			}
		}
	}

	return Downsample(fb.Image(), opts.Size)
}
