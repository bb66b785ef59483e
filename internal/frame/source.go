package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
)

var (
	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("frame: source closed")

	// ErrEndOfStream is returned when a finite source has no more frames.
	ErrEndOfStream = errors.New("frame: end of stream")

	// ErrReadFailed is returned when a live source fails to deliver a frame.
	ErrReadFailed = errors.New("frame: read failed")
)

// Source yields frames in BGR order.
type Source interface {
	// Read fills m with the next frame.
	Read(m *gocv.Mat) error

	// FrameCount is the number of frames in a file, or 0 when unknown or
	// unbounded.
	FrameCount() int

	// FPS is the nominal frame rate, or 0 when the backend does not know.
	FPS() float64

	Close() error
}

// Kind identifies the backend for a source string.
type Kind int

const (
	KindCamera Kind = iota
	KindV4L
	KindFile
)

const v4lPrefix = "v4l:"

// ParseSource splits a source string into its backend and the value passed
// to that backend. Camera indexes are returned as decimal strings.
func ParseSource(name string) (Kind, string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return 0, "", fmt.Errorf("frame: empty source")
	case strings.HasPrefix(name, v4lPrefix):
		dev := strings.TrimPrefix(name, v4lPrefix)
		if dev == "" {
			return 0, "", fmt.Errorf("frame: %q names no device", name)
		}
		return KindV4L, dev, nil
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 {
			return 0, "", fmt.Errorf("frame: negative camera index %d", n)
		}
		return KindCamera, name, nil
	}
	return KindFile, name, nil
}

// Open opens the source named by cam.Source.
func Open(cam config.Camera) (Source, error) {
	kind, value, err := ParseSource(cam.Source)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindV4L:
		return openV4L(value, cam)
	case KindCamera:
		index, _ := strconv.Atoi(value)
		return openCapture(index, cam)
	default:
		return openCapture(value, cam)
	}
}

// captureSource reads through an OpenCV VideoCapture.
type captureSource struct {
	cap    *gocv.VideoCapture
	mirror bool
	frames int
	fps    float64
}

func openCapture(device interface{}, cam config.Camera) (*captureSource, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("frame: cannot open %v: %w", device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("frame: cannot open %v", device)
	}

	if _, live := device.(int); live {
		if cam.Width > 0 && cam.Height > 0 {
			vc.Set(gocv.VideoCaptureFrameWidth, float64(cam.Width))
			vc.Set(gocv.VideoCaptureFrameHeight, float64(cam.Height))
		}
	}

	s := &captureSource{
		cap:    vc,
		mirror: cam.Mirror,
		fps:    vc.Get(gocv.VideoCaptureFPS),
	}
	if _, live := device.(int); !live {
		if n := int(vc.Get(gocv.VideoCaptureFrameCount)); n > 0 {
			s.frames = n
		}
	}
	return s, nil
}

func (s *captureSource) Read(m *gocv.Mat) error {
	if s.cap == nil {
		return ErrClosed
	}
	if ok := s.cap.Read(m); !ok || m.Empty() {
		if s.frames > 0 {
			return ErrEndOfStream
		}
		return ErrReadFailed
	}
	if s.mirror {
		gocv.Flip(*m, m, 1)
	}
	return nil
}

func (s *captureSource) FrameCount() int { return s.frames }

func (s *captureSource) FPS() float64 { return s.fps }

func (s *captureSource) Close() error {
	if s.cap == nil {
		return nil
	}
	err := s.cap.Close()
	s.cap = nil
	return err
}
