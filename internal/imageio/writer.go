package imageio

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
)

// WritePNG encodes img losslessly as PNG, creating parent directories.
func WritePNG(path string, img image.Image) error {
	return writeFile(path, func(f *os.File) error {
		return png.Encode(f, img)
	})
}

// WriteWebP encodes img as lossless WebP, creating parent directories.
func WriteWebP(path string, img image.Image) error {
	return writeFile(path, func(f *os.File) error {
		if err := nativewebp.Encode(f, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	})
}

func writeFile(path string, encode func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("imageio: %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("imageio: close %s: %w", path, err)
	}
	return nil
}
