package traffic

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/ironsheep/vision-demos/internal/imaging"
)

// SnapshotName names the crop of the i-th light (0-based) found in frame n,
// e.g. "frame-000012-light-01-red.png".
func SnapshotName(n, i int, l Light) string {
	return fmt.Sprintf("frame-%06d-light-%02d-%s.png", n, i+1, strings.ToLower(string(l.Color)))
}

// SaveSnapshots writes a PNG crop of every light to dir and returns the
// written paths. Lights lying entirely outside img are skipped.
func SaveSnapshots(dir string, n int, img image.Image, lights []Light) ([]string, error) {
	var paths []string
	for i, l := range lights {
		if imaging.ClampRect(l.Box, img.Bounds()).Empty() {
			continue
		}
		path := filepath.Join(dir, SnapshotName(n, i, l))
		if err := imaging.CropToFile(img, l.Box, path); err != nil {
			return paths, fmt.Errorf("failed to save snapshot: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
