package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// DefaultJPEGQuality is used when an ImageService is given a quality outside
// 1..100.
const DefaultJPEGQuality = 85

// ImageService turns embedded pictures into folder images.
//
// ImageService is used to:
//   - Fit a picture into a square box (extracting folder.jpg from a track)
//   - Re-encode a picture as JPEG
//
// Example usage:
//
//	svc := NewImageService(85)
//
//	// Fit to 500x500 and encode as JPEG
//	data, _ := svc.FitImage(ctx, picture, 500, 500)
type ImageService struct {
	quality int
}

// NewImageService creates an ImageService that encodes JPEG at quality.
func NewImageService(quality int) *ImageService {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &ImageService{quality: quality}
}

// Quality returns the JPEG quality used when encoding.
func (s *ImageService) Quality() int {
	return s.quality
}

// FitImage scales an image so that it fills maxWidth x maxHeight on its
// limiting side and returns it as JPEG.
//
// The aspect ratio is preserved. Smaller images are scaled up, so a 250x100
// picture fitted to 500x500 becomes 500x200.
//
// The Catmull-Rom algorithm is used for scaling.
func (s *ImageService) FitImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCantDecodeImage, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := FitSize(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return s.encode(dst)
}

// ConvertToJPEG re-encodes an image as JPEG without scaling it.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCantDecodeImage, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.encode(img)
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FitSize returns width and height scaled by the smaller of the two ratios
// needed to reach maxWidth and maxHeight. Neither result is below 1.
//
// Example:
//
//	FitSize(1000, 500, 500, 500) // 500, 250
//	FitSize(100, 200, 500, 500)  // 250, 500
func FitSize(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return max(width, 1), max(height, 1)
	}

	ratio := min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := int(float64(width) * ratio)
	h := int(float64(height) * ratio)

	return max(w, 1), max(h, 1)
}
