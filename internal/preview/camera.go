package preview

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Options controls preview rendering.
type Options struct {
	Size        int     // output edge length in pixels
	Supersample int     // render at Size*Supersample, then downsample
	TiltDeg     float64 // rotation about +x; negative tips the top away
	Margin      int     // border in output pixels
}

// DefaultOptions returns a 512px, 2× supersampled, 35° tilted view.
func DefaultOptions() Options {
	return Options{Size: 512, Supersample: 2, TiltDeg: -35, Margin: 16}
}

func (o Options) normalized() Options {
	if o.Size <= 0 {
		o.Size = 512
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}

// camera is an orthographic projection fitted to a set of points.
type camera struct {
	rot    r3.Rotation
	center r3.Vec
	scale  float64
	half   float64
}

// fitCamera rotates pts by the tilt and chooses a scale so their bounding
// box fits into renderSize with margin.
func fitCamera(pts []r3.Vec, tiltDeg float64, renderSize, margin int) camera {
	rot := r3.NewRotation(tiltDeg*math.Pi/180, r3.Vec{X: 1})

	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range pts {
		tp := rot.Rotate(p)
		lo = r3.Vec{X: math.Min(lo.X, tp.X), Y: math.Min(lo.Y, tp.Y), Z: math.Min(lo.Z, tp.Z)}
		hi = r3.Vec{X: math.Max(hi.X, tp.X), Y: math.Max(hi.Y, tp.Y), Z: math.Max(hi.Z, tp.Z)}
	}
	if len(pts) == 0 {
		lo, hi = r3.Vec{}, r3.Vec{}
	}

	span := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if span < 0.001 {
		span = 0.001
	}
	return camera{
		rot:    rot,
		center: r3.Scale(0.5, r3.Add(lo, hi)),
		scale:  float64(renderSize-2*margin) / span,
		half:   float64(renderSize) / 2,
	}
}

// project maps a model-space point to screen x, y (y down) and view z.
func (c camera) project(p r3.Vec) (sx, sy, z float64) {
	tp := r3.Sub(c.rot.Rotate(p), c.center)
	return c.half + tp.X*c.scale, c.half - tp.Y*c.scale, tp.Z
}

// rotate brings a model-space direction into view space.
func (c camera) rotate(n r3.Vec) r3.Vec {
	return c.rot.Rotate(n)
}
