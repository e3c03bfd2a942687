// Package imageio loads source rasters from disk and writes pipeline outputs.
package imageio

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supported lists the extensions with a registered decoder.
var supported = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tga":  true,
	".webp": true,
	".bmp":  true,
}

// Index is the sorted set of decodable images below a directory.
type Index struct {
	root    string
	entries []string
}

// BuildIndex walks dir recursively, skipping skipDir (usually the output
// directory) so previous results are never picked up as inputs.
func BuildIndex(dir, skipDir string) (*Index, error) {
	idx := &Index{root: dir}
	skip := ""
	if skipDir != "" {
		skip = filepath.Clean(skipDir)
	}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skip != "" && filepath.Clean(path) == skip {
				return filepath.SkipDir
			}
			return nil
		}
		if supported[strings.ToLower(filepath.Ext(path))] {
			idx.entries = append(idx.entries, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(idx.entries)
	return idx, nil
}

// Paths returns the indexed files in lexical order.
func (idx *Index) Paths() []string {
	return idx.entries
}

// Name returns a stable output name for path: its location relative to the
// index root without extension, using forward slashes.
func (idx *Index) Name(path string) string {
	rel, err := filepath.Rel(idx.root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel)
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}
