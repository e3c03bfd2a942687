package batch

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"relief3d/internal/imageio"
	"relief3d/internal/preview"
	"relief3d/internal/reconstruct"
)

func writeInput(t *testing.T, path string, alpha uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 12, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 12; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 25), B: 128, A: alpha})
		}
	}
	require.NoError(t, imageio.WritePNG(path, img))
}

func testConfig(out string) Config {
	seed := uint64(1)
	return Config{
		OutputDir:     out,
		Reconstructor: reconstruct.New(nil, reconstruct.NewDepthCache(4)),
		Modes:         reconstruct.AllModes,
		Params:        reconstruct.Params{SegX: 4, SegY: 4, PointCount: 200, Seed: &seed},
		Preview:       preview.Options{Size: 32, Supersample: 2, TiltDeg: -30, Margin: 2},
		Workers:       2,
		Logger:        zap.NewNop().Sugar(),
	}
}

func TestRunWritesOutputsAndManifest(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(in, "out")
	writeInput(t, filepath.Join(in, "photo.png"), 255)
	writeInput(t, filepath.Join(in, "sub", "ghost.png"), 0)

	idx, err := imageio.BuildIndex(in, out)
	require.NoError(t, err)
	items := Items(idx)
	require.Len(t, items, 2)

	results := Run(testConfig(out), items)
	require.Len(t, results, 2)

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}

	ok := byName["photo"]
	require.True(t, ok.Success, ok.Error)
	assert.Equal(t, 12, ok.Width)
	assert.Equal(t, 25, ok.Vertices)
	assert.Equal(t, 200, ok.Points)
	assert.Greater(t, ok.Depth.Max, ok.Depth.Min)
	assert.ElementsMatch(t, []string{
		"photo/depth.png", "photo/depth.webp", "photo/mesh.webp",
		"photo/normal.png", "photo/displacement.png", "photo/relief.webp", "photo/points.webp",
	}, ok.Outputs)
	for _, o := range ok.Outputs {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(o)))
	}

	// fully transparent input cannot be sampled and writes nothing
	ghost := byName["sub/ghost"]
	assert.False(t, ghost.Success)
	assert.Contains(t, ghost.Error, "sampling exhausted")
	assert.NoDirExists(t, filepath.Join(out, "sub", "ghost"))

	manifest := filepath.Join(out, "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, results[0].Name, entries[0].Name)
}

func TestRunReportsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0644))

	cfg := testConfig(filepath.Join(dir, "out"))
	cfg.Logger = nil
	cfg.Workers = 0
	results := Run(cfg, []Item{{Name: "broken", Path: bad}})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
}

func TestRunRemovesOutputsWhenWriteFails(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(in, "out")
	writeInput(t, filepath.Join(in, "photo.png"), 255)

	// a directory where depth.webp belongs makes the second write fail after depth.png
	require.NoError(t, os.MkdirAll(filepath.Join(out, "photo", "depth.webp"), 0755))

	results := Run(testConfig(out), []Item{{Name: "photo", Path: filepath.Join(in, "photo.png")}})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
	assert.Empty(t, results[0].Outputs)
	assert.NoFileExists(t, filepath.Join(out, "photo", "depth.png"))
	assert.NoDirExists(t, filepath.Join(out, "photo"))
}
