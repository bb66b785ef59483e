package traffic

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var boxGreen = color.RGBA{0, 255, 0, 0}

// Label is the text drawn above a light, e.g. "Red (0.87)".
func Label(l Light) string {
	return fmt.Sprintf("%s (%.2f)", l.Color, l.Confidence)
}

// Draw outlines every light on frame and writes its label 10 px above the
// top-left corner.
func Draw(frame *gocv.Mat, lights []Light) {
	for _, l := range lights {
		gocv.Rectangle(frame, l.Box, boxGreen, 2)
		gocv.PutText(frame, Label(l), image.Pt(l.Box.Min.X, l.Box.Min.Y-10),
			gocv.FontHersheySimplex, 0.5, boxGreen, 2)
	}
}
