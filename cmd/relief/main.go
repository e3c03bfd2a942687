package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"relief3d/internal/batch"
	"relief3d/internal/config"
	"relief3d/internal/imageio"
	"relief3d/internal/preview"
	"relief3d/internal/reconstruct"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Process only first N images for testing")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	inputDir := flag.String("input", "", "Directory with source images (default: cwd)")
	outputDir := flag.String("output", "", "Output directory (default: <input>/relief-out)")
	modes := flag.String("modes", "", "Comma separated modes: mesh,normal,pointcloud (default: all)")
	seed := flag.Int64("seed", -1, "Point sampling seed (default: random)")
	verbose := flag.Bool("verbose", false, "Log per-image results")

	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalw("loading config", "error", err)
		}
	}

	flags := config.Flags{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		Workers:   *workers,
	}
	if *modes != "" {
		flags.Modes = strings.Split(*modes, ",")
	}
	if *seed >= 0 {
		s := uint64(*seed)
		flags.Seed = &s
	}
	// CLI flags override config file
	cfg.Resolve(flags)

	parsedModes, err := cfg.ParsedModes()
	if err != nil {
		log.Fatalw("invalid modes", "error", err)
	}

	idx, err := imageio.BuildIndex(cfg.InputDir, cfg.OutputDir)
	if err != nil {
		log.Fatalw("scanning input", "dir", cfg.InputDir, "error", err)
	}
	items := batch.Items(idx)

	// Limit for testing
	if *testN > 0 && *testN < len(items) {
		items = items[:*testN]
	}

	if len(items) == 0 {
		log.Infow("no images to process", "dir", cfg.InputDir)
		return
	}

	log.Infow("starting",
		"images", len(items),
		"modes", cfg.Modes,
		"workers", cfg.Workers,
		"output", cfg.OutputDir,
	)

	start := time.Now()

	batchCfg := batch.Config{
		OutputDir:     cfg.OutputDir,
		Reconstructor: reconstruct.New(cfg.Estimator(), reconstruct.NewDepthCache(cfg.CacheSize)),
		Modes:         parsedModes,
		Params:        cfg.Params(),
		MaxDimension:  cfg.MaxDimension,
		Preview: preview.Options{
			Size:        cfg.PreviewSize,
			Supersample: cfg.Supersample,
			TiltDeg:     preview.DefaultOptions().TiltDeg,
			Margin:      preview.DefaultOptions().Margin,
		},
		Workers: cfg.Workers,
		Logger:  log,
	}

	results := batch.Run(batchCfg, items)

	var failures error
	success := 0
	for _, r := range results {
		if r.Success {
			success++
			continue
		}
		failures = multierr.Append(failures, fmt.Errorf("%s: %s", r.Name, r.Error))
	}

	log.Infow("done",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"succeeded", success,
		"total", len(items),
	)

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Warnw("creating output dir", "error", err)
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		log.Warnw("manifest write failed", "error", err)
	} else {
		log.Infow("manifest written", "path", manifestPath)
	}

	if failures != nil {
		errs := multierr.Errors(failures)
		limit := min(len(errs), 20)
		for _, e := range errs[:limit] {
			log.Errorw("failed", "error", e)
		}
		if len(errs) > limit {
			log.Errorw("more failures omitted", "count", len(errs)-limit)
		}
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
