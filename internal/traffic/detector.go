package traffic

import (
	"errors"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
	"github.com/ironsheep/vision-demos/internal/hsv"
)

// ErrEmptyFrame is returned when Detect is handed an empty Mat.
var ErrEmptyFrame = errors.New("traffic: empty frame")

// Light is one detected traffic light.
type Light struct {
	Box        image.Rectangle `json:"box"`
	Confidence float32         `json:"confidence"`
	Color      hsv.Signal      `json:"color"`
	Counts     ColorCounts     `json:"counts"`
}

// Detector wraps a YOLOv8 network loaded from ONNX. It is not safe for
// concurrent use.
type Detector struct {
	cfg config.Traffic
	net gocv.Net
}

// NewDetector loads cfg.Model and selects the CPU backend.
func NewDetector(cfg config.Traffic) (*Detector, error) {
	if cfg.InputSize <= 0 {
		return nil, fmt.Errorf("traffic: input size must be positive, got %d", cfg.InputSize)
	}
	if _, err := os.Stat(cfg.Model); err != nil {
		return nil, fmt.Errorf("traffic: model %s: %w", cfg.Model, err)
	}

	net := gocv.ReadNetFromONNX(cfg.Model)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("traffic: cannot load model %s", cfg.Model)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Detector{cfg: cfg, net: net}, nil
}

// Close releases the network.
func (d *Detector) Close() error {
	return d.net.Close()
}

// Detect finds traffic lights in a BGR frame and classifies their color.
// Boxes are in frame coordinates and may extend past the frame edge.
func (d *Detector) Detect(frame gocv.Mat) ([]Light, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	// The frame is stretched to the square input, not letterboxed, so
	// boxes scale back independently on each axis.
	size := d.cfg.InputSize
	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("traffic: unexpected output shape %v", dims)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("traffic: read output: %w", err)
	}

	cands, err := Decode(data, dims[1], dims[2], DecodeOptions{
		ClassID:  d.cfg.ClassID,
		MinScore: float32(d.cfg.Confidence),
		ScaleX:   float64(frame.Cols()) / float64(size),
		ScaleY:   float64(frame.Rows()) / float64(size),
	})
	if err != nil {
		return nil, err
	}

	kept := Suppress(cands, d.cfg.NMS)
	lights := make([]Light, 0, len(kept))
	for _, c := range kept {
		counts := CountColors(frame, c.Box)
		lights = append(lights, Light{
			Box:        c.Box,
			Confidence: c.Score,
			Color:      counts.Signal(),
			Counts:     counts,
		})
	}
	return lights, nil
}
