package batch

import (
	"encoding/json"
	"os"

	"relief3d/internal/surface"
)

// ManifestEntry represents one item in the output manifest.
type ManifestEntry struct {
	Name     string             `json:"name"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Depth    surface.FieldStats `json:"depth"`
	Vertices int                `json:"vertices,omitempty"`
	Points   int                `json:"points,omitempty"`
	Outputs  []string           `json:"outputs"`
	Error    string             `json:"error,omitempty"`
}

// WriteManifest writes manifest.json describing every result, failed ones included.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Name:     r.Name,
			Width:    r.Width,
			Height:   r.Height,
			Depth:    r.Depth,
			Vertices: r.Vertices,
			Points:   r.Points,
			Outputs:  r.Outputs,
			Error:    r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
