// Package media normalizes uploaded avatar images into a single stored
// format: a square JPEG of bounded size.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	// AvatarSide is the edge length avatars are normalized to.
	AvatarSide = 512

	jpegQuality = 85
)

// Rect is a crop region in pixels of the source image. A zero-size rect
// means "no client crop": the largest centered square is used instead.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Decode parses an uploaded image. The declared content type wins; when it
// is absent or unknown the filename extension decides.
func Decode(data []byte, contentType, filename string) (image.Image, error) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return jpeg.Decode(bytes.NewReader(data))
	case strings.Contains(ct, "png"):
		return png.Decode(bytes.NewReader(data))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(data))
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case ".png":
		return png.Decode(bytes.NewReader(data))
	case ".webp":
		return webp.Decode(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("unsupported image type %q (%s)", contentType, filename)
}

// SquareJPEG crops the source to the requested region, clamped to the
// image bounds, then scales to AvatarSide and re-encodes as JPEG. With an
// empty rect the largest centered square is taken.
func SquareJPEG(src image.Image, crop Rect) ([]byte, error) {
	var squared image.Image
	if crop.empty() {
		bounds := src.Bounds()
		side := bounds.Dx()
		if bounds.Dy() < side {
			side = bounds.Dy()
		}
		squared = imaging.CropAnchor(src, side, side, imaging.Center)
	} else {
		region := clampRect(crop, src.Bounds())
		if region.Dx() <= 0 || region.Dy() <= 0 {
			return nil, fmt.Errorf("crop region outside image bounds")
		}
		squared = imaging.Crop(src, region)
	}

	resized := imaging.Resize(squared, AvatarSide, AvatarSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

func clampRect(crop Rect, bounds image.Rectangle) image.Rectangle {
	region := image.Rect(crop.X, crop.Y, crop.X+crop.Width, crop.Y+crop.Height)
	return region.Intersect(bounds)
}
