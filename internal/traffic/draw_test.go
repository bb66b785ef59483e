package traffic

import (
	"image"
	"os"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
	"github.com/ironsheep/vision-demos/internal/hsv"
)

func TestLabel(t *testing.T) {
	got := Label(Light{Color: hsv.Red, Confidence: 0.876})
	if got != "Red (0.88)" {
		t.Errorf("got %q, want %q", got, "Red (0.88)")
	}
}

func TestDraw(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Draw(&frame, []Light{{Box: image.Rect(50, 60, 90, 140), Confidence: 0.9, Color: hsv.Green}})

	edge := frame.GetVecbAt(100, 50)
	if edge[0] != 0 || edge[1] != 255 || edge[2] != 0 {
		t.Errorf("box edge: got BGR %v, want green", edge)
	}

	inside := frame.GetVecbAt(100, 70)
	if inside[0] != 0 || inside[1] != 0 || inside[2] != 0 {
		t.Errorf("box interior should stay untouched, got %v", inside)
	}

	label := frame.Region(image.Rect(50, 35, 150, 56))
	defer label.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(label, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) == 0 {
		t.Error("no label drawn above the box")
	}
}

func TestDraw_NoLights(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 50, 50, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Draw(&frame, nil)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	if n := gocv.CountNonZero(gray); n != 0 {
		t.Errorf("expected untouched frame, %d pixels changed", n)
	}
}

func TestNewDetector_Errors(t *testing.T) {
	cfg := config.Default().Traffic
	cfg.Model = "/nonexistent/yolov8n.onnx"
	if _, err := NewDetector(cfg); err == nil {
		t.Error("expected error for missing model")
	}

	cfg = config.Default().Traffic
	cfg.InputSize = 0
	if _, err := NewDetector(cfg); err == nil {
		t.Error("expected error for zero input size")
	}
}

// TestDetector_Model runs the real network when VISION_YOLO_MODEL points at
// a YOLOv8 ONNX export.
func TestDetector_Model(t *testing.T) {
	model := os.Getenv("VISION_YOLO_MODEL")
	if model == "" {
		t.Skip("VISION_YOLO_MODEL not set")
	}

	cfg := config.Default().Traffic
	cfg.Model = model
	d, err := NewDetector(cfg)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	defer d.Close()

	blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 360, 640, gocv.MatTypeCV8UC3)
	defer blank.Close()

	lights, err := d.Detect(blank)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(lights) != 0 {
		t.Errorf("blank frame: expected no lights, got %v", lights)
	}

	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := d.Detect(empty); err != ErrEmptyFrame {
		t.Errorf("empty frame: expected ErrEmptyFrame, got %v", err)
	}
}
