package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"relief3d/internal/imageio"
	"relief3d/internal/preview"
	"relief3d/internal/reconstruct"
	"relief3d/internal/surface"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir     string
	Reconstructor *reconstruct.Reconstructor
	Modes         []reconstruct.Mode
	Params        reconstruct.Params
	MaxDimension  int
	Preview       preview.Options
	Workers       int
	Logger        *zap.SugaredLogger
}

// Item is one input image.
type Item struct {
	Name string // output name, relative and slash separated
	Path string
}

// Items lists every indexed image as a batch item.
func Items(idx *imageio.Index) []Item {
	items := make([]Item, 0, idx.Len())
	for _, p := range idx.Paths() {
		items = append(items, Item{Name: idx.Name(p), Path: p})
	}
	return items
}

// Result holds the outcome of processing one item.
type Result struct {
	Name     string
	Width    int
	Height   int
	Depth    surface.FieldStats
	Vertices int
	Points   int
	Outputs  []string
	Success  bool
	Error    string
}

// Run processes all items using a worker pool.
func Run(cfg Config, items []Item) []Result {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	total := len(items)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Infow("progress", "done", p, "total", total, "items_per_sec", float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	itemChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range itemChan {
				results[idx] = processItem(cfg, items[idx])
				if results[idx].Success {
					log.Debugw("reconstructed", "name", items[idx].Name, "outputs", len(results[idx].Outputs))
				} else {
					log.Warnw("reconstruction failed", "name", items[idx].Name, "error", results[idx].Error)
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range items {
		itemChan <- i
	}
	close(itemChan)

	wg.Wait()
	close(done)

	return results
}

func processItem(cfg Config, item Item) Result {
	res := Result{Name: item.Name}
	outDir := filepath.Join(cfg.OutputDir, filepath.FromSlash(item.Name))
	fail := func(err error) Result {
		if len(res.Outputs) > 0 {
			os.RemoveAll(outDir)
			res.Outputs = nil
		}
		res.Error = err.Error()
		return res
	}

	img, err := imageio.Load(item.Path, cfg.MaxDimension)
	if err != nil {
		return fail(err)
	}
	res.Width, res.Height = img.Width, img.Height

	df, _, err := cfg.Reconstructor.Depth(img)
	if err != nil {
		return fail(err)
	}
	res.Depth = df.Stats()

	write := func(name string, encode func(string) error) error {
		p := filepath.Join(outDir, name)
		if err := encode(p); err != nil {
			return err
		}
		rel, _ := filepath.Rel(cfg.OutputDir, p)
		res.Outputs = append(res.Outputs, filepath.ToSlash(rel))
		return nil
	}

	// Reconstruct every mode before writing; a failed write removes what was written.
	outs := make([]*reconstruct.Result, 0, len(cfg.Modes))
	for _, mode := range cfg.Modes {
		out, err := cfg.Reconstructor.Run(img, mode, cfg.Params)
		if err != nil {
			return fail(fmt.Errorf("%v: %w", mode, err))
		}
		outs = append(outs, out)
	}

	if err := write("depth.png", func(p string) error { return imageio.WritePNG(p, df.Gray16()) }); err != nil {
		return fail(err)
	}
	if err := write("depth.webp", func(p string) error { return imageio.WriteWebP(p, preview.DepthColormap(df)) }); err != nil {
		return fail(err)
	}
	for _, out := range outs {
		if err := writeMode(cfg, img, out, &res, write); err != nil {
			return fail(fmt.Errorf("%v: %w", out.Mode, err))
		}
	}

	res.Success = true
	return res
}

func writeMode(cfg Config, img *surface.Image, out *reconstruct.Result, res *Result, write func(string, func(string) error) error) error {
	switch out.Mode {
	case reconstruct.ModeMesh:
		res.Vertices = len(out.Mesh.Vertices)
		return write("mesh.webp", func(p string) error {
			return imageio.WriteWebP(p, preview.RenderMesh(out.Mesh, img, cfg.Preview))
		})
	case reconstruct.ModeNormalMapped:
		if err := write("normal.png", func(p string) error {
			return imageio.WritePNG(p, out.Surface.NormalMap.NRGBA())
		}); err != nil {
			return err
		}
		if err := write("displacement.png", func(p string) error {
			return imageio.WritePNG(p, out.Surface.Displacement.Gray())
		}); err != nil {
			return err
		}
		return write("relief.webp", func(p string) error {
			return imageio.WriteWebP(p, preview.RenderMapped(out.Surface))
		})
	case reconstruct.ModePointCloud:
		res.Points = out.Cloud.Len()
		return write("points.webp", func(p string) error {
			return imageio.WriteWebP(p, preview.RenderPoints(out.Cloud, cfg.Preview))
		})
	}
	return nil
}
