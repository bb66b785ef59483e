// Command traffic-lights finds traffic lights in a video stream with a
// YOLOv8 model and reports whether each one shows red, yellow or green.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/k0kubun/go-ansi"
	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
	"github.com/ironsheep/vision-demos/internal/frame"
	"github.com/ironsheep/vision-demos/internal/hsv"
	"github.com/ironsheep/vision-demos/internal/traffic"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const windowName = "YOLOv8 Traffic Light Detection"

var signalColors = map[hsv.Signal]*color.Color{
	hsv.Red:     color.New(color.FgRed, color.Bold),
	hsv.Yellow:  color.New(color.FgYellow, color.Bold),
	hsv.Green:   color.New(color.FgGreen, color.Bold),
	hsv.Unknown: color.New(color.FgWhite),
}

type options struct {
	headless  bool
	record    string
	snapshots string
	quiet     bool
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML settings file (default $VISION_CONFIG)")
		model       = flag.String("model", "", "YOLOv8 ONNX model (default from config)")
		input       = flag.String("input", "", "camera index, video file or URL, or v4l:/dev/videoN")
		conf        = flag.Float64("conf", 0, "minimum detection confidence (default from config)")
		mirror      = flag.Bool("mirror", false, "flip frames horizontally")
		headless    = flag.Bool("headless", false, "run without the preview window")
		record      = flag.String("record", "", "write the annotated stream to this AVI file")
		snapshots   = flag.String("snapshots", "", "save a PNG crop of every detected light to this directory")
		quiet       = flag.Bool("quiet", false, "do not print a status line per light")
		showVersion = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("traffic-lights %s\n", Version)
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
	if *model != "" {
		cfg.Traffic.Model = *model
	}
	if *input != "" {
		cfg.Camera.Source = *input
	}
	if *conf > 0 {
		cfg.Traffic.Confidence = *conf
	}
	if *mirror {
		cfg.Camera.Mirror = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	opts := options{
		headless:  *headless,
		record:    *record,
		snapshots: *snapshots,
		quiet:     *quiet,
	}
	if err := run(cfg, opts); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, opts options) error {
	det, err := traffic.NewDetector(cfg.Traffic)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer det.Close()

	if cfg.Debug() {
		log.Printf("traffic-lights v%s, model %s, conf %.2f, nms %.2f",
			Version, cfg.Traffic.Model, cfg.Traffic.Confidence, cfg.Traffic.NMS)
	}

	src, err := frame.Open(cfg.Camera)
	if err != nil {
		log.Print("Error: Cannot access the camera.")
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display := frame.NewDisplay(opts.headless)
	defer display.Close()

	var rec *frame.Recorder
	if opts.record != "" {
		rec = frame.NewRecorder(opts.record, src.FPS())
		defer rec.Close()
	}

	size := image.Pt(cfg.Traffic.FrameWidth, cfg.Traffic.FrameHeight)
	resized := gocv.NewMat()
	defer resized.Close()

	var n, saved int
	loopOpts := frame.LoopOptions{
		Display:     display,
		Progress:    display.Headless(),
		Description: "traffic lights",
	}

	stats, err := frame.Loop(ctx, src, loopOpts, func(m *gocv.Mat) error {
		n++
		if size.X > 0 && size.Y > 0 {
			gocv.Resize(*m, &resized, size, 0, 0, gocv.InterpolationLinear)
		} else {
			m.CopyTo(&resized)
		}

		lights, err := det.Detect(resized)
		if err != nil {
			return err
		}

		if opts.snapshots != "" && len(lights) > 0 {
			img, err := resized.ToImage()
			if err != nil {
				return fmt.Errorf("failed to convert frame: %w", err)
			}
			paths, err := traffic.SaveSnapshots(opts.snapshots, n, img, lights)
			saved += len(paths)
			if err != nil {
				return err
			}
		}

		if !opts.quiet {
			for _, l := range lights {
				signalColors[l.Color].Printf("frame %d: %s light %.2f at %v\n", n, l.Color, l.Confidence, l.Box)
			}
		}

		traffic.Draw(&resized, lights)
		display.Show(windowName, resized)

		if rec != nil {
			return rec.Write(resized)
		}
		return nil
	})
	if errors.Is(err, frame.ErrReadFailed) {
		log.Print("Error: Cannot read frame from camera.")
		err = nil
	}

	if cfg.Debug() {
		log.Printf("processed %d frames (quit key: %v), %d snapshots", stats.Frames, stats.Quit, saved)
	}
	return err
}
