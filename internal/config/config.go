package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"relief3d/internal/depth"
	"relief3d/internal/mesh"
	"relief3d/internal/pointcloud"
	"relief3d/internal/reconstruct"
)

// Config holds all configurable paths and reconstruction settings.
type Config struct {
	// Paths
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`

	// Reconstruction settings
	Modes                []string `json:"modes"`
	SegmentsX            int      `json:"segments_x"`
	SegmentsY            int      `json:"segments_y"`
	DisplacementScale    float64  `json:"displacement_scale"`
	DisplacementMapScale float64  `json:"displacement_map_scale"`
	PointCount           int      `json:"point_count"`
	Seed                 *uint64  `json:"seed,omitempty"`
	BlurSigma            *float64 `json:"blur_sigma,omitempty"`
	MaxDimension         int      `json:"max_dimension"`

	// Output settings
	PreviewSize int `json:"preview_size"`
	Supersample int `json:"supersample"`
	Workers     int `json:"workers"`
	CacheSize   int `json:"cache_size"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir  string
	OutputDir string
	Modes     []string
	Workers   int
	Seed      *uint64
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if len(flags.Modes) > 0 {
		c.Modes = flags.Modes
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != nil {
		c.Seed = flags.Seed
	}

	if c.InputDir == "" {
		c.InputDir, _ = os.Getwd()
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, "relief-out")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.InputDir, c.OutputDir)
	}

	// Defaults for reconstruction settings
	if len(c.Modes) == 0 {
		for _, m := range reconstruct.AllModes {
			c.Modes = append(c.Modes, m.String())
		}
	}
	if c.SegmentsX <= 0 {
		c.SegmentsX = mesh.DefaultSegments
	}
	if c.SegmentsY <= 0 {
		c.SegmentsY = mesh.DefaultSegments
	}
	if c.DisplacementScale == 0 {
		c.DisplacementScale = mesh.DefaultDisplacementScale
	}
	if c.DisplacementMapScale == 0 {
		c.DisplacementMapScale = reconstruct.DefaultDisplacementMapScale
	}
	if c.PointCount <= 0 {
		c.PointCount = pointcloud.DefaultCount
	}
	if c.BlurSigma == nil {
		sigma := depth.DefaultBlurSigma
		c.BlurSigma = &sigma
	}
	if c.MaxDimension <= 0 {
		c.MaxDimension = 1024
	}

	// Defaults for output settings
	if c.PreviewSize <= 0 {
		c.PreviewSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.CacheSize <= 0 {
		c.CacheSize = c.Workers * 2
	}
}

// ParsedModes converts Modes into reconstruct.Mode values, dropping duplicates.
func (c *Config) ParsedModes() ([]reconstruct.Mode, error) {
	seen := make(map[reconstruct.Mode]bool)
	var out []reconstruct.Mode
	for _, s := range c.Modes {
		m, err := reconstruct.ParseMode(s)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

// Params returns the reconstruction parameters described by the config.
func (c *Config) Params() reconstruct.Params {
	return reconstruct.Params{
		SegX:                 c.SegmentsX,
		SegY:                 c.SegmentsY,
		DisplacementScale:    c.DisplacementScale,
		DisplacementMapScale: c.DisplacementMapScale,
		PointCount:           c.PointCount,
		Seed:                 c.Seed,
	}
}

// Estimator returns a depth estimator configured with the blur sigma.
func (c *Config) Estimator() *depth.Estimator {
	if c.BlurSigma == nil {
		return depth.NewEstimator()
	}
	return &depth.Estimator{BlurSigma: *c.BlurSigma}
}
