// Package image prepares raw image files for transmission to the inference
// service: orientation correction, color flattening, JPEG encoding, and a
// bounded best-effort size reduction.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for the supported input formats.
	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/exhibitlab/docent-api/internal/config"
	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/generation"
)

// supportedExtensions lists the image file types the normalizer accepts.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// SupportedExtension reports whether the given path has a supported image
// extension.
func SupportedExtension(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Normalizer converts arbitrary input images into transmission-ready JPEG
// payloads with a best-effort encoded-size ceiling.
type Normalizer struct {
	maxEncodedBytes int
	quality         int
	maxDimension    int
	logger          *slog.Logger
}

// NewNormalizer creates a Normalizer from the given image configuration.
func NewNormalizer(cfg config.ImageConfig, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		maxEncodedBytes: cfg.MaxEncodedBytes,
		quality:         cfg.JPEGQuality,
		maxDimension:    cfg.MaxDimension,
		logger:          logger.With("component", "image_normalizer"),
	}
}

// Normalize reads the image at path and returns an encoded payload suitable
// for the inference service. The sequence is fixed: orientation correction,
// color flattening, one encode at the configured quality, and if the result
// exceeds the size budget, a single rescale of the longer side to the
// configured maximum followed by one re-encode. The second result is
// returned even if it still exceeds the budget; the ceiling is best-effort.
// The source file is never modified.
func (n *Normalizer) Normalize(path string) (generation.ImagePayload, error) {
	if !SupportedExtension(path) {
		return generation.ImagePayload{}, fmt.Errorf("%w: unsupported image type %q",
			domain.ErrValidation, filepath.Ext(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return generation.ImagePayload{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return generation.ImagePayload{}, fmt.Errorf("%w: cannot decode %s: %v",
			domain.ErrValidation, filepath.Base(path), err)
	}

	img = applyOrientation(img, readOrientation(raw))
	img = flatten(img)

	encoded, err := encodeJPEG(img, n.quality)
	if err != nil {
		return generation.ImagePayload{}, fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if len(encoded) > n.maxEncodedBytes {
		scaled := n.shrink(img)
		reencoded, err := encodeJPEG(scaled, n.quality)
		if err != nil {
			return generation.ImagePayload{}, fmt.Errorf("failed to re-encode %s: %w", path, err)
		}

		n.logger.Debug("rescaled oversized image",
			"file", filepath.Base(path),
			"format", format,
			"original_bytes", len(encoded),
			"rescaled_bytes", len(reencoded),
			"width", scaled.Bounds().Dx(),
			"height", scaled.Bounds().Dy())

		encoded = reencoded
	}

	return generation.ImagePayload{Data: encoded, MIMEType: "image/jpeg"}, nil
}

// shrink scales the image so its longer side is at most the configured
// maximum, preserving aspect ratio. Images already within the bound are
// returned unchanged.
func (n *Normalizer) shrink(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	longer := w
	if h > longer {
		longer = h
	}
	if longer <= n.maxDimension {
		return img
	}

	ratio := float64(n.maxDimension) / float64(longer)
	newW := int(float64(w) * ratio)
	newH := int(float64(h) * ratio)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// flatten renders the image over a white background, removing transparency
// and palette indirection so the JPEG encoder sees plain RGB.
func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.Gray:
		// Already opaque three-channel or grayscale; nothing to do.
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}

// encodeJPEG encodes the image at the given quality.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readOrientation extracts the EXIF orientation value (1-8) from the raw
// file bytes. Files without EXIF data report the identity orientation.
func readOrientation(raw []byte) int {
	meta, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 1
	}

	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}

	return orientation
}

// applyOrientation bakes the EXIF orientation into the pixel data so that
// rotated camera captures read correctly. The eight EXIF orientation values
// cover the four rotations and their mirrored variants.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return flipHorizontal(img)
	case 3:
		return rotate180(img)
	case 4:
		return flipHorizontal(rotate180(img))
	case 5:
		return flipHorizontal(rotate270(img))
	case 6:
		return rotate90(img)
	case 7:
		return flipHorizontal(rotate90(img))
	case 8:
		return rotate270(img)
	default:
		return img
	}
}

// rotate90 rotates the image 90 degrees clockwise.
func rotate90(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(h-1-y, x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}

// rotate180 rotates the image 180 degrees.
func rotate180(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, h-1-y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}

// rotate270 rotates the image 270 degrees clockwise.
func rotate270(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(y, w-1-x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}

// flipHorizontal mirrors the image across its vertical axis.
func flipHorizontal(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return dst
}
