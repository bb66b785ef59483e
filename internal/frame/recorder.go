package frame

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultFPS is used when the source does not report a frame rate.
const DefaultFPS = 20.0

// Recorder writes frames to an MJPEG video. The writer is opened on the
// first frame so the output size always matches what the demo draws.
type Recorder struct {
	path   string
	fps    float64
	writer *gocv.VideoWriter
	size   [2]int
	frames int
}

// NewRecorder returns a Recorder for path. fps <= 0 selects DefaultFPS.
func NewRecorder(path string, fps float64) *Recorder {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Recorder{path: path, fps: fps}
}

// Write appends frame to the video.
func (r *Recorder) Write(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("frame: refusing to record an empty frame")
	}
	if r.writer == nil {
		w, err := gocv.VideoWriterFile(r.path, "MJPG", r.fps, frame.Cols(), frame.Rows(), frame.Channels() == 3)
		if err != nil {
			return fmt.Errorf("frame: cannot record to %s: %w", r.path, err)
		}
		if !w.IsOpened() {
			w.Close()
			return fmt.Errorf("frame: cannot record to %s", r.path)
		}
		r.writer = w
		r.size = [2]int{frame.Cols(), frame.Rows()}
	}
	if frame.Cols() != r.size[0] || frame.Rows() != r.size[1] {
		return fmt.Errorf("frame: %dx%d frame does not match %dx%d recording",
			frame.Cols(), frame.Rows(), r.size[0], r.size[1])
	}
	if err := r.writer.Write(frame); err != nil {
		return fmt.Errorf("frame: write %s: %w", r.path, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int { return r.frames }

// Close finishes the file. A Recorder that never saw a frame writes nothing.
func (r *Recorder) Close() error {
	if r == nil || r.writer == nil {
		return nil
	}
	err := r.writer.Close()
	r.writer = nil
	return err
}
