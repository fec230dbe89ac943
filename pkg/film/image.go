package film

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned when encoding to an unsupported image format
var ErrUnknownFormat = errors.New("unknown image format")

// Format is an output image encoding
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
)

// ParseFormat resolves a format name or file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png", "":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension for the format, including the dot
func (f Format) Extension() string {
	if f == FormatTIFF {
		return ".tiff"
	}
	return ".png"
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatTIFF {
		return "image/tiff"
	}
	return "image/png"
}

// gamma applied when converting linear radiance to display values
const gamma = 2.0

func toUint16(v float64) uint16 {
	return uint16(math.Round(math.Max(0, math.Min(1, v)) * 0xffff))
}

// Image resolves a pass into a displayable image. Alpha comes from the
// transparency of the combined pass, so background only passes stay opaque.
func (rb *RenderBuffer) Image(p Pass) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, rb.width, rb.height))

	for y := 0; y < rb.height; y++ {
		for x := 0; x < rb.width; x++ {
			pixel := rb.PixelIndex(x, y)
			rgb := rb.Average(p, pixel)

			alpha := 1.0
			if p == PassCombined {
				alpha = rb.Alpha(pixel)
				// The combined pass is premultiplied
				if alpha > 0 {
					rgb = rgb.Multiply(1.0 / alpha)
				}
			}
			if rb.Samples(pixel) == 0 {
				alpha = 0
			}

			rgb = rgb.GammaCorrect(gamma).Clamp(0, 1)
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: toUint16(rgb.X),
				G: toUint16(rgb.Y),
				B: toUint16(rgb.Z),
				A: toUint16(alpha),
			})
		}
	}
	return img
}

// Encode writes a pass in the given format
func (rb *RenderBuffer) Encode(w io.Writer, p Pass, format Format) error {
	if !rb.HasPass(p) {
		return fmt.Errorf("pass %s not allocated", p)
	}
	img := rb.Image(p)

	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
	case FormatTIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
			return fmt.Errorf("encoding tiff: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// Stats summarizes the sampling state of the buffer
type Stats struct {
	TotalPixels    int
	TotalSamples   int64
	AverageSamples float64
	MinSamples     int64
	MaxSamples     int64
}

// Stats computes sample statistics over all pixels
func (rb *RenderBuffer) Stats() Stats {
	stats := Stats{TotalPixels: rb.width * rb.height}
	if stats.TotalPixels == 0 {
		return stats
	}
	stats.MinSamples = math.MaxInt64
	for i := range rb.samples {
		n := rb.samples[i].Load()
		stats.TotalSamples += n
		stats.MinSamples = min(stats.MinSamples, n)
		stats.MaxSamples = max(stats.MaxSamples, n)
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return stats
}
