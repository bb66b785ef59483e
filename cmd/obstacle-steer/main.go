// Command obstacle-steer watches a camera for red objects and prints which
// way to steer around the largest one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/k0kubun/go-ansi"
	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
	"github.com/ironsheep/vision-demos/internal/frame"
	"github.com/ironsheep/vision-demos/internal/steer"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	windowVideo = "Video Stream"
	windowMask  = "Red Object Mask"
)

var directionColors = map[steer.Direction]*color.Color{
	steer.TurnLeft:    color.New(color.FgYellow, color.Bold),
	steer.TurnRight:   color.New(color.FgCyan, color.Bold),
	steer.MoveForward: color.New(color.FgGreen),
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML settings file (default $VISION_CONFIG)")
		source      = flag.String("source", "", "camera index, video file or URL, or v4l:/dev/videoN")
		mirror      = flag.Bool("mirror", false, "flip frames horizontally")
		headless    = flag.Bool("headless", false, "run without preview windows")
		record      = flag.String("record", "", "write the annotated stream to this AVI file")
		showVersion = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("obstacle-steer %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  OpenCV:     %s\n", gocv.OpenCVVersion())
		return
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	color.Output = ansi.NewAnsiStdout()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *source != "" {
		cfg.Camera.Source = *source
	}
	if *mirror {
		cfg.Camera.Mirror = true
	}

	if err := run(cfg, *headless, *record); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, headless bool, record string) error {
	if cfg.Debug() {
		log.Printf("obstacle-steer v%s, source %q, ranges %v", Version, cfg.Camera.Source, cfg.Steer.Ranges)
	}

	src, err := frame.Open(cfg.Camera)
	if err != nil {
		log.Print("Unable to open the camera")
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display := frame.NewDisplay(headless)
	defer display.Close()
	if !display.Headless() {
		fmt.Println("Press 'q' to exit the program")
	}

	var rec *frame.Recorder
	if record != "" {
		rec = frame.NewRecorder(record, src.FPS())
		defer rec.Close()
	}

	det := steer.NewDetector(cfg.Steer)
	defer det.Close()

	opts := frame.LoopOptions{
		Display:     display,
		Progress:    display.Headless(),
		Description: "steer",
	}
	stats, err := frame.Loop(ctx, src, opts, func(m *gocv.Mat) error {
		res, err := det.Process(*m)
		if err != nil {
			return err
		}

		steer.Annotate(m, res)
		if res.Direction != steer.None {
			directionColors[res.Direction].Println(res.Direction)
		}

		display.Show(windowVideo, *m)
		display.Show(windowMask, det.Mask())

		if rec != nil {
			return rec.Write(*m)
		}
		return nil
	})
	if errors.Is(err, frame.ErrReadFailed) {
		log.Print("Unable to capture video frame")
		err = nil
	}

	if cfg.Debug() {
		log.Printf("processed %d frames (quit key: %v)", stats.Frames, stats.Quit)
		if rec != nil {
			log.Printf("recorded %d frames to %s", rec.Frames(), record)
		}
	}
	return err
}
