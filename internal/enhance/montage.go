package enhance

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/imaging"
)

// Title placement and style.
var (
	titleOrigin = image.Pt(10, 30)
	titleFG     = color.RGBA{255, 255, 255, 0}
	titleBG     = color.RGBA{0, 0, 0, 0}
)

const (
	titleFont      = gocv.FontHersheySimplex
	titleScale     = 1.0
	titleThickness = 2
	titlePad       = 5
)

// AddTitle draws title in the top-left corner of img over a filled black box
// sized to the text. img is modified in place.
func AddTitle(img *gocv.Mat, title string) {
	size, baseline := gocv.GetTextSizeWithBaseline(title, titleFont, titleScale, titleThickness)

	box := image.Rect(
		titleOrigin.X-titlePad,
		titleOrigin.Y-size.Y-titlePad,
		titleOrigin.X+size.X+titlePad,
		titleOrigin.Y+baseline+titlePad,
	)
	gocv.Rectangle(img, box, titleBG, -1)
	gocv.PutTextWithParams(img, title, titleOrigin, titleFont, titleScale, titleFG, titleThickness, gocv.LineAA, false)
}

// TitleAll stamps each stage with its own title.
func TitleAll(stages []Stage) {
	for i := range stages {
		AddTitle(&stages[i].Mat, stages[i].Title)
	}
}

// Montage tiles the stages into a grid cols wide, left to right and top to
// bottom. All stages must share size and type. The caller closes the result.
func Montage(stages []Stage, cols int) (gocv.Mat, error) {
	if len(stages) == 0 {
		return gocv.Mat{}, fmt.Errorf("enhance: no stages to tile")
	}
	if cols < 1 || len(stages)%cols != 0 {
		return gocv.Mat{}, fmt.Errorf("enhance: %d stages do not fill rows of %d", len(stages), cols)
	}

	first := stages[0].Mat
	for _, s := range stages[1:] {
		if s.Mat.Rows() != first.Rows() || s.Mat.Cols() != first.Cols() || s.Mat.Type() != first.Type() {
			return gocv.Mat{}, fmt.Errorf("enhance: stage %q is %dx%d, want %dx%d",
				s.Title, s.Mat.Cols(), s.Mat.Rows(), first.Cols(), first.Rows())
		}
	}

	var sheet gocv.Mat
	for r := 0; r < len(stages)/cols; r++ {
		row := stages[r*cols].Mat.Clone()
		for _, s := range stages[r*cols+1 : (r+1)*cols] {
			row = concat(row, s.Mat, true)
		}
		if r == 0 {
			sheet = row
			continue
		}
		sheet = concat(sheet, row, false)
		row.Close()
	}
	return sheet, nil
}

// concat joins acc and next into a fresh Mat and releases acc. OpenCV cannot
// concatenate into one of its own inputs.
func concat(acc, next gocv.Mat, horizontal bool) gocv.Mat {
	out := gocv.NewMat()
	if horizontal {
		gocv.Hconcat(acc, next, &out)
	} else {
		gocv.Vconcat(acc, next, &out)
	}
	acc.Close()
	return out
}

// StageFileName returns the file name used for stage i, e.g.
// "03-tophat.png".
func StageFileName(i int, title string) string {
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	return fmt.Sprintf("%02d-%s.png", i+1, slug)
}

// SaveStages writes every stage to dir as PNG and returns the written paths
// in stage order.
func SaveStages(dir string, stages []Stage) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(stages))
	for i, s := range stages {
		path := filepath.Join(dir, StageFileName(i, s.Title))
		if ok := gocv.IMWrite(path, s.Mat); !ok {
			return nil, fmt.Errorf("failed to write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveSheet writes the montage to path, downscaled to fit maxWidth when it
// is wider. maxWidth <= 0 keeps the full size.
func SaveSheet(path string, sheet gocv.Mat, maxWidth int) error {
	img, err := sheet.ToImage()
	if err != nil {
		return fmt.Errorf("failed to convert sheet: %w", err)
	}
	return imaging.SavePreview(img, path, maxWidth)
}
