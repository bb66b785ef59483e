package steer

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
)

// ErrEmptyFrame is returned when Process is handed an empty Mat.
var ErrEmptyFrame = errors.New("steer: empty frame")

var (
	overlayGreen = color.RGBA{0, 255, 0, 0}
	overlayWhite = color.RGBA{255, 255, 255, 0}
)

// Result describes the obstacle found in one frame.
type Result struct {
	Found     bool          `json:"found"`
	Area      float64       `json:"area"`
	Centroid  image.Point   `json:"centroid"`
	Contour   []image.Point `json:"-"`
	Direction Direction     `json:"direction"`
}

// Detector holds the reusable Mats of the red obstacle pipeline. It is not
// safe for concurrent use.
type Detector struct {
	cfg    config.Steer
	kernel gocv.Mat
	hsv    gocv.Mat
	mask   gocv.Mat
	part   gocv.Mat
}

// NewDetector allocates a detector for cfg. Call Close to release it.
func NewDetector(cfg config.Steer) *Detector {
	return &Detector{
		cfg:    cfg,
		kernel: gocv.Ones(cfg.KernelSize, cfg.KernelSize, gocv.MatTypeCV8U),
		hsv:    gocv.NewMat(),
		mask:   gocv.NewMat(),
		part:   gocv.NewMat(),
	}
}

// Close releases the detector's Mats.
func (d *Detector) Close() error {
	d.kernel.Close()
	d.hsv.Close()
	d.mask.Close()
	d.part.Close()
	return nil
}

// Mask returns the cleaned binary mask of the last processed frame. The Mat
// is owned by the detector and overwritten by the next Process call.
func (d *Detector) Mask() gocv.Mat {
	return d.mask
}

// Process finds the largest in-range region of a BGR frame and decides a
// direction for it.
func (d *Detector) Process(frame gocv.Mat) (Result, error) {
	if frame.Empty() {
		return Result{}, ErrEmptyFrame
	}
	if len(d.cfg.Ranges) == 0 {
		return Result{}, fmt.Errorf("steer: no color ranges configured")
	}

	gocv.CvtColor(frame, &d.hsv, gocv.ColorBGRToHSV)

	for i, r := range d.cfg.Ranges {
		lo, hi := r.Bounds()
		lb := gocv.NewScalar(lo[0], lo[1], lo[2], lo[3])
		ub := gocv.NewScalar(hi[0], hi[1], hi[2], hi[3])
		if i == 0 {
			gocv.InRangeWithScalar(d.hsv, lb, ub, &d.mask)
			continue
		}
		gocv.InRangeWithScalar(d.hsv, lb, ub, &d.part)
		gocv.Add(d.mask, d.part, &d.mask)
	}

	gocv.MorphologyEx(d.mask, &d.mask, gocv.MorphOpen, d.kernel)
	gocv.MorphologyEx(d.mask, &d.mask, gocv.MorphClose, d.kernel)

	contours := gocv.FindContours(d.mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if best < 0 || area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 || bestArea <= d.cfg.MinArea {
		return Result{}, nil
	}

	pts := contours.At(best).ToPoints()
	c, ok := Centroid(pts)
	if !ok {
		return Result{}, nil
	}

	return Result{
		Found:     true,
		Area:      bestArea,
		Centroid:  c,
		Contour:   pts,
		Direction: Decide(c.X, frame.Cols(), d.cfg.DeadBand),
	}, nil
}

// Annotate draws the centroid, contour and direction of res onto frame.
// Nothing is drawn when no obstacle was found.
func Annotate(frame *gocv.Mat, res Result) {
	if !res.Found {
		return
	}

	gocv.Circle(frame, res.Centroid, 5, overlayGreen, -1)

	if len(res.Contour) > 0 {
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{res.Contour})
		gocv.DrawContours(frame, pv, -1, overlayGreen, 2)
		pv.Close()
	}

	gocv.PutText(frame, string(res.Direction), image.Pt(10, 30), gocv.FontHersheySimplex, 1, overlayWhite, 2)
}
