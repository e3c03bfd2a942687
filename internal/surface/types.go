package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// Reconstruction errors. Every failure returned by the pipeline wraps one of these.
var (
	ErrInvalidInput      = errors.New("surface: invalid input")
	ErrSamplingExhausted = errors.New("surface: sampling exhausted")
)

// Image is an immutable RGBA8 raster, row-major, row 0 at the top.
// Callers must not modify Pix after construction.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = W*H*4
}

// NewImage wraps pix as an Image after validating its dimensions.
func NewImage(w, h int, pix []uint8) (*Image, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("surface: image size %dx%d: %w", w, h, ErrInvalidInput)
	}
	if len(pix) != w*h*4 {
		return nil, fmt.Errorf("surface: buffer length %d, want %d: %w", len(pix), w*h*4, ErrInvalidInput)
	}
	return &Image{Width: w, Height: h, Pix: pix}, nil
}

// FromNRGBA copies an NRGBA image into a tightly packed Image.
func FromNRGBA(src *image.NRGBA) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w*4:(y+1)*w*4], src.Pix[off:off+w*4])
	}
	return NewImage(w, h, pix)
}

// Validate reports whether the image satisfies the raster invariants.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("surface: nil image: %w", ErrInvalidInput)
	}
	if img.Width < 1 || img.Height < 1 {
		return fmt.Errorf("surface: image size %dx%d: %w", img.Width, img.Height, ErrInvalidInput)
	}
	if len(img.Pix) != img.Width*img.Height*4 {
		return fmt.Errorf("surface: buffer length %d, want %d: %w",
			len(img.Pix), img.Width*img.Height*4, ErrInvalidInput)
	}
	return nil
}

// Offset returns the index of the R byte of pixel (x, y).
func (img *Image) Offset(x, y int) int {
	return (y*img.Width + x) * 4
}

// NRGBA returns a view of the image as *image.NRGBA sharing the same pixels.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// DepthField is a W×H scalar field in [0,1]; 1 is closest to the viewer.
type DepthField struct {
	Width  int
	Height int
	Data   []float64 // row-major, len = W*H
}

// NewDepthField allocates a zeroed field.
func NewDepthField(w, h int) *DepthField {
	return &DepthField{Width: w, Height: h, Data: make([]float64, w*h)}
}

// At returns the depth at (x, y).
func (df *DepthField) At(x, y int) float64 {
	return df.Data[y*df.Width+x]
}

// Clone returns a deep copy of the field.
func (df *DepthField) Clone() *DepthField {
	return &DepthField{Width: df.Width, Height: df.Height, Data: append([]float64(nil), df.Data...)}
}

// Empty reports whether the field holds no samples.
func (df *DepthField) Empty() bool {
	return df == nil || df.Width < 1 || df.Height < 1 || len(df.Data) != df.Width*df.Height
}

// Gray quantises the field to an 8-bit displacement map.
func (df *DepthField) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, df.Width, df.Height))
	for i, d := range df.Data {
		img.Pix[i] = uint8(math.Round(clamp01(d) * 255))
	}
	return img
}

// Gray16 quantises the field to 16 bits, for lossless-enough export.
func (df *DepthField) Gray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, df.Width, df.Height))
	for y := 0; y < df.Height; y++ {
		for x := 0; x < df.Width; x++ {
			v := uint16(math.Round(clamp01(df.At(x, y)) * 65535))
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
