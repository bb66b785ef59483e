package frame

import (
	"context"
	"errors"
	"io"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"
)

// ErrStop may be returned by a frame callback to end Loop without error.
var ErrStop = errors.New("frame: stop")

// LoopOptions tunes Loop.
type LoopOptions struct {
	// Display is polled after every frame; q ends the loop. Nil or
	// headless skips polling.
	Display *Display

	// PollDelay is the window event wait in milliseconds. Zero means 1.
	PollDelay int

	// Progress draws a progress bar for sources with a known frame count.
	Progress bool

	// ProgressWriter receives the bar. Nil means the terminal's stderr.
	ProgressWriter io.Writer

	// Description labels the progress bar.
	Description string
}

// Stats summarizes a finished loop.
type Stats struct {
	Frames int
	Quit   bool // ended by the quit key
}

// Loop reads frames from src and passes each one to fn until the source
// ends, ctx is cancelled, fn returns an error, or the quit key is pressed.
//
// The frame Mat is reused between calls; fn must Clone anything it keeps.
// End of stream, cancellation, ErrStop and the quit key all return a nil
// error. Read failures are returned as is, so callers can match
// ErrReadFailed.
func Loop(ctx context.Context, src Source, opts LoopOptions, fn func(frame *gocv.Mat) error) (Stats, error) {
	var stats Stats

	frame := gocv.NewMat()
	defer frame.Close()

	bar := newBar(src, opts)
	defer func() {
		if bar != nil {
			bar.Finish()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return stats, nil
		default:
		}

		if err := src.Read(&frame); err != nil {
			if errors.Is(err, ErrEndOfStream) {
				return stats, nil
			}
			return stats, err
		}
		stats.Frames++

		if err := fn(&frame); err != nil {
			if errors.Is(err, ErrStop) {
				return stats, nil
			}
			return stats, err
		}

		if bar != nil {
			bar.Add(1)
		}

		if opts.Display.Poll(opts.PollDelay) {
			stats.Quit = true
			return stats, nil
		}
	}
}

func newBar(src Source, opts LoopOptions) *progressbar.ProgressBar {
	n := src.FrameCount()
	if !opts.Progress || n <= 0 {
		return nil
	}

	w := opts.ProgressWriter
	if w == nil {
		w = ansi.NewAnsiStderr()
	}
	desc := opts.Description
	if desc == "" {
		desc = "frames"
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetDescription("[cyan]"+desc+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
