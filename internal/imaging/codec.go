package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// EdgeImageResult contains a rendered pipeline stage encoded as base64 PNG.
type EdgeImageResult struct {
	// Width of the output image in pixels (same as the detection input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as the detection input).
	Height int `json:"height"`

	// ImageBase64 is the rendered stage encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// ToRaster converts img to a single-channel intensity raster with samples
// in [0, 1].
//
// Colour images are reduced to luminance first (imaging.Grayscale, ITU-R
// BT.601 weights). Each 8-bit luminance value v becomes v/255. The returned
// raster is row-major with the image's top-left pixel at index 0 regardless
// of img.Bounds().Min.
func ToRaster(img image.Image) (*raster.Raster[float64], error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("failed to convert image: %w: %v", raster.ErrBadShape, img.Bounds())
	}
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width*4]
		for x := 0; x < width; x++ {
			data[y*width+x] = float64(row[x*4]) / 255.0
		}
	}

	r, err := raster.New(width, height, data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	return r, nil
}

// FromUnit converts a raster of unit-range values back to an 8-bit
// grayscale image. Each value v becomes round(v*255) saturated to [0, 255];
// NaN becomes 0. Negative gradient responses therefore render black.
func FromUnit(r *raster.Raster[float64]) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, r.Width(), r.Height()))
	for i, v := range r.Data() {
		out.Pix[i] = unitToByte(v)
	}
	return out
}

func unitToByte(v float64) uint8 {
	s := math.Round(v * 255)
	switch {
	case math.IsNaN(s) || s <= 0:
		return 0
	case s >= 255:
		return 255
	}
	return uint8(s)
}

// EncodePNG encodes img as PNG and wraps it for transport.
func EncodePNG(img image.Image) (*EdgeImageResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &EdgeImageResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes img to path; the format follows the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
