package enhance

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
)

var (
	// ErrEmptyImage is returned for an empty input Mat.
	ErrEmptyImage = errors.New("enhance: empty image")

	// ErrNotGrayscale is returned when the input has more than one channel.
	ErrNotGrayscale = errors.New("enhance: input must be single-channel grayscale")
)

// Stage titles, in pipeline order.
const (
	TitleOriginal  = "Original Image"
	TitleCLAHE     = "CLAHE"
	TitleTophat    = "Tophat"
	TitleBlurred   = "Blurred"
	TitleEnhanced  = "Enhanced"
	TitleThreshold = "Thresholded"
	TitleClosed    = "Closed"
	TitleOpened    = "Opened"
	TitleSharpened = "Sharpened"
	TitleFinal     = "Final"
)

// Stage is one intermediate image of the chain.
type Stage struct {
	Title string
	Mat   gocv.Mat
}

// Pipeline applies the enhancement chain with fixed parameters.
type Pipeline struct {
	cfg config.Enhance
}

// New returns a pipeline configured by cfg.
func New(cfg config.Enhance) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Load reads path as an 8-bit grayscale Mat.
func Load(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("failed to load %s: %w", path, ErrEmptyImage)
	}
	return img, nil
}

// Run executes the chain on a grayscale image and returns the ten stages in
// order, starting with a copy of the input. The input itself is not modified.
func (p *Pipeline) Run(gray gocv.Mat) ([]Stage, error) {
	if gray.Empty() {
		return nil, ErrEmptyImage
	}
	if gray.Channels() != 1 {
		return nil, fmt.Errorf("%w: got %d channels", ErrNotGrayscale, gray.Channels())
	}

	c := p.cfg

	original := gocv.NewMat()
	gray.CopyTo(&original)

	clahe := gocv.NewCLAHEWithParams(c.ClipLimit, image.Pt(c.TileGrid, c.TileGrid))
	defer clahe.Close()
	equalized := gocv.NewMat()
	clahe.Apply(original, &equalized)

	rect := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(c.TophatKernel, c.TophatKernel))
	defer rect.Close()
	tophat := gocv.NewMat()
	gocv.MorphologyEx(equalized, &tophat, gocv.MorphTophat, rect)

	blurred := gocv.NewMat()
	gocv.GaussianBlur(tophat, &blurred, image.Pt(c.BlurKernel, c.BlurKernel), 0, 0, gocv.BorderDefault)

	enhanced := gocv.NewMat()
	gocv.AddWeighted(original, c.OriginalWeight, blurred, c.BlurredWeight, c.Gamma, &enhanced)

	thresh := gocv.NewMat()
	gocv.AdaptiveThreshold(enhanced, &thresh, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinaryInv, c.BlockSize, float32(c.ThresholdC))

	closeKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(c.CloseKernel, c.CloseKernel))
	defer closeKernel.Close()
	closed := gocv.NewMat()
	gocv.MorphologyEx(thresh, &closed, gocv.MorphClose, closeKernel)

	openKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(c.OpenKernel, c.OpenKernel))
	defer openKernel.Close()
	opened := gocv.NewMat()
	gocv.MorphologyEx(closed, &opened, gocv.MorphOpen, openKernel)

	sharpen := sharpenKernel()
	defer sharpen.Close()
	sharpened := gocv.NewMat()
	gocv.Filter2D(opened, &sharpened, gocv.MatType(-1), sharpen, image.Pt(-1, -1), 0, gocv.BorderDefault)

	final := gocv.NewMat()
	gocv.MedianBlur(sharpened, &final, c.MedianAperture)
	gocv.BitwiseNot(final, &final)

	return []Stage{
		{TitleOriginal, original},
		{TitleCLAHE, equalized},
		{TitleTophat, tophat},
		{TitleBlurred, blurred},
		{TitleEnhanced, enhanced},
		{TitleThreshold, thresh},
		{TitleClosed, closed},
		{TitleOpened, opened},
		{TitleSharpened, sharpened},
		{TitleFinal, final},
	}, nil
}

// sharpenKernel returns the 3x3 Laplacian-style sharpening kernel
//
//	 0 -1  0
//	-1  5 -1
//	 0 -1  0
func sharpenKernel() gocv.Mat {
	k := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	weights := [3][3]float32{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	for row := range weights {
		for col, w := range weights[row] {
			k.SetFloatAt(row, col, w)
		}
	}
	return k
}

// Find returns the stage with the given title.
func Find(stages []Stage, title string) (Stage, bool) {
	for _, s := range stages {
		if s.Title == title {
			return s, true
		}
	}
	return Stage{}, false
}

// Close releases every stage Mat.
func Close(stages []Stage) {
	for i := range stages {
		stages[i].Mat.Close()
	}
}
