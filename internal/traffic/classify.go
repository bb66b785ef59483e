package traffic

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/hsv"
)

// ColorCounts holds the number of ROI pixels inside each light range.
type ColorCounts struct {
	Red    int `json:"red"`
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
}

// Signal applies the strict-largest rule to the counts.
func (c ColorCounts) Signal() hsv.Signal {
	return hsv.Dominant(c.Red, c.Green, c.Yellow)
}

// CountColors counts the pixels of box (clamped to the BGR frame) that fall
// in the red, green and yellow light ranges.
func CountColors(frame gocv.Mat, box image.Rectangle) ColorCounts {
	r := box.Canon().Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if r.Empty() {
		return ColorCounts{}
	}

	roi := frame.Region(r)
	defer roi.Close()

	hsvROI := gocv.NewMat()
	defer hsvROI.Close()
	gocv.CvtColor(roi, &hsvROI, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()

	count := func(rg hsv.Range) int {
		lo, hi := rg.Bounds()
		gocv.InRangeWithScalar(hsvROI,
			gocv.NewScalar(lo[0], lo[1], lo[2], lo[3]),
			gocv.NewScalar(hi[0], hi[1], hi[2], hi[3]),
			&mask)
		return gocv.CountNonZero(mask)
	}

	return ColorCounts{
		Red:    count(hsv.TrafficRed),
		Green:  count(hsv.TrafficGreen),
		Yellow: count(hsv.TrafficYellow),
	}
}

// ClassifyROI returns the light color inside box. Boxes entirely outside
// the frame are Unknown.
func ClassifyROI(frame gocv.Mat, box image.Rectangle) hsv.Signal {
	return CountColors(frame, box).Signal()
}
