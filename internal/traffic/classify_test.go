package traffic

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/hsv"
)

var (
	bgrRed    = color.RGBA{255, 0, 0, 0}
	bgrGreen  = color.RGBA{0, 255, 0, 0}
	bgrYellow = color.RGBA{255, 255, 0, 0}
)

// lightFrame returns a black 200x200 frame with the given areas filled.
func lightFrame(fills map[image.Rectangle]color.RGBA) gocv.Mat {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC3)
	for r, c := range fills {
		gocv.Rectangle(&frame, r, c, -1)
	}
	return frame
}

func TestClassifyROI(t *testing.T) {
	box := image.Rect(20, 20, 60, 120)

	tests := []struct {
		name  string
		fills map[image.Rectangle]color.RGBA
		want  hsv.Signal
	}{
		{"red lamp", map[image.Rectangle]color.RGBA{image.Rect(30, 25, 50, 45): bgrRed}, hsv.Red},
		{"green lamp", map[image.Rectangle]color.RGBA{image.Rect(30, 95, 50, 115): bgrGreen}, hsv.Green},
		{"yellow lamp", map[image.Rectangle]color.RGBA{image.Rect(30, 60, 50, 80): bgrYellow}, hsv.Yellow},
		{"dark housing", nil, hsv.Unknown},
		{"tie", map[image.Rectangle]color.RGBA{
			image.Rect(30, 25, 50, 45):  bgrRed,
			image.Rect(30, 95, 50, 115): bgrGreen,
		}, hsv.Unknown},
		{"bigger lamp wins", map[image.Rectangle]color.RGBA{
			image.Rect(30, 25, 50, 45): bgrRed,
			image.Rect(30, 60, 55, 85): bgrYellow,
		}, hsv.Yellow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := lightFrame(tt.fills)
			defer frame.Close()

			if got := ClassifyROI(frame, box); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCountColors(t *testing.T) {
	frame := lightFrame(map[image.Rectangle]color.RGBA{image.Rect(30, 25, 50, 45): bgrRed})
	defer frame.Close()

	counts := CountColors(frame, image.Rect(20, 20, 60, 120))
	if counts.Red != 400 {
		t.Errorf("Red: got %d, want 400", counts.Red)
	}
	if counts.Green != 0 || counts.Yellow != 0 {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestCountColors_Clamped(t *testing.T) {
	frame := lightFrame(map[image.Rectangle]color.RGBA{image.Rect(180, 0, 200, 20): bgrGreen})
	defer frame.Close()

	// box hangs off the top-right corner
	counts := CountColors(frame, image.Rect(170, -30, 260, 20))
	if counts.Green != 400 {
		t.Errorf("Green: got %d, want 400", counts.Green)
	}

	outside := CountColors(frame, image.Rect(300, 300, 340, 380))
	if outside != (ColorCounts{}) {
		t.Errorf("box outside the frame: got %+v, want zero", outside)
	}
	if got := ClassifyROI(frame, image.Rect(-50, -50, -10, -10)); got != hsv.Unknown {
		t.Errorf("box outside the frame: got %s, want Unknown", got)
	}
}
