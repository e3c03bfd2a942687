// Package reconstruct runs the depth estimator once per image and then one
// of the three surface builders.
package reconstruct

import (
	"fmt"
	"strings"

	"relief3d/internal/depth"
	"relief3d/internal/mesh"
	"relief3d/internal/normalmap"
	"relief3d/internal/pointcloud"
	"relief3d/internal/surface"
)

// Mode selects the output representation.
type Mode int

const (
	ModeMesh Mode = iota
	ModeNormalMapped
	ModePointCloud
)

// AllModes lists every mode in output order.
var AllModes = []Mode{ModeMesh, ModeNormalMapped, ModePointCloud}

func (m Mode) String() string {
	switch m {
	case ModeMesh:
		return "mesh"
	case ModeNormalMapped:
		return "normal"
	case ModePointCloud:
		return "pointcloud"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts the names returned by Mode.String plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mesh", "realistic":
		return ModeMesh, nil
	case "normal", "normalmapped", "textured":
		return ModeNormalMapped, nil
	case "pointcloud", "points":
		return ModePointCloud, nil
	}
	return 0, fmt.Errorf("reconstruct: unknown mode %q: %w", s, surface.ErrInvalidInput)
}

// DefaultDisplacementMapScale is the displacement applied by renderers to
// the fixed base surface of a normal-mapped result.
const DefaultDisplacementMapScale = 0.2

// Params configures the builders. Zero values select defaults.
type Params struct {
	SegX                 int
	SegY                 int
	DisplacementScale    float64
	DisplacementMapScale float64
	PointCount           int
	Seed                 *uint64
}

func (p Params) withDefaults() Params {
	if p.SegX == 0 {
		p.SegX = mesh.DefaultSegments
	}
	if p.SegY == 0 {
		p.SegY = mesh.DefaultSegments
	}
	if p.DisplacementScale == 0 {
		p.DisplacementScale = mesh.DefaultDisplacementScale
	}
	if p.DisplacementMapScale == 0 {
		p.DisplacementMapScale = DefaultDisplacementMapScale
	}
	if p.PointCount == 0 {
		p.PointCount = pointcloud.DefaultCount
	}
	return p
}

// MappedSurface is the texture, normal map and displacement map triple
// applied by a renderer to a fixed base surface. Displacement is owned by
// the caller and never shared with the depth cache.
type MappedSurface struct {
	Texture           *surface.Image
	NormalMap         *normalmap.NormalMap
	Displacement      *surface.DepthField
	DisplacementScale float64
}

// Result is a tagged union: only the field matching Mode is set.
type Result struct {
	Mode    Mode
	Mesh    *mesh.Mesh
	Surface *MappedSurface
	Cloud   *pointcloud.Cloud

	// DepthCached reports whether the depth field came from the cache.
	DepthCached bool
}

// Reconstructor runs the pipeline. It is safe for concurrent use; each call
// is independent apart from the shared depth cache.
type Reconstructor struct {
	estimator *depth.Estimator
	cache     *DepthCache
}

// New returns a Reconstructor using estimator (nil for the default) and an
// optional depth cache.
func New(estimator *depth.Estimator, cache *DepthCache) *Reconstructor {
	if estimator == nil {
		estimator = depth.NewEstimator()
	}
	return &Reconstructor{estimator: estimator, cache: cache}
}

// Depth returns the depth field for img, from the cache when possible.
func (r *Reconstructor) Depth(img *surface.Image) (*surface.DepthField, bool, error) {
	if err := img.Validate(); err != nil {
		return nil, false, fmt.Errorf("reconstruct: %w", err)
	}
	if r.cache == nil {
		df, err := r.estimator.Estimate(img)
		return df, false, err
	}
	return r.cache.GetOrCompute(imageKey(img, r.estimator.BlurSigma), func() (*surface.DepthField, error) {
		return r.estimator.Estimate(img)
	})
}

// Run reconstructs img in the requested mode. On failure no partial result is returned.
func (r *Reconstructor) Run(img *surface.Image, mode Mode, params Params) (*Result, error) {
	if mode < ModeMesh || mode > ModePointCloud {
		return nil, fmt.Errorf("reconstruct: %v: %w", mode, surface.ErrInvalidInput)
	}
	params = params.withDefaults()

	df, cached, err := r.Depth(img)
	if err != nil {
		return nil, err
	}

	res := &Result{Mode: mode, DepthCached: cached}
	switch mode {
	case ModeMesh:
		m, err := mesh.Build(df, mesh.Options{
			SegX:  params.SegX,
			SegY:  params.SegY,
			Scale: params.DisplacementScale,
		})
		if err != nil {
			return nil, err
		}
		res.Mesh = m
	case ModeNormalMapped:
		nm, err := normalmap.Synthesize(df)
		if err != nil {
			return nil, err
		}
		res.Surface = &MappedSurface{
			Texture:           img,
			NormalMap:         nm,
			Displacement:      df.Clone(),
			DisplacementScale: params.DisplacementMapScale,
		}
	case ModePointCloud:
		cloud, err := pointcloud.Sample(img, df, pointcloud.Options{
			Count: params.PointCount,
			Seed:  params.Seed,
		})
		if err != nil {
			return nil, err
		}
		res.Cloud = cloud
	}
	return res, nil
}
