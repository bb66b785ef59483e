package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ClampRect returns r limited to bounds. The result may be empty.
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	return r.Canon().Intersect(bounds)
}

// Crop extracts the part of rect that lies inside img. It fails when
// nothing of rect is inside the image.
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	clipped := ClampRect(rect, img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, img.Bounds())
	}
	return imaging.Crop(img, clipped), nil
}

// CropToFile crops rect out of img and writes it to path. The format follows
// the file extension. Parent directories are created as needed.
func CropToFile(img image.Image, rect image.Rectangle, path string) error {
	cropped, err := Crop(img, rect)
	if err != nil {
		return err
	}
	return save(cropped, path)
}

// SavePreview writes img to path, shrunk to maxWidth when it is wider.
// Aspect ratio is preserved. maxWidth <= 0 keeps the original size.
func SavePreview(img image.Image, path string, maxWidth int) error {
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	return save(img, path)
}

func save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
