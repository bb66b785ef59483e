// Command doc-enhance runs the document enhancement chain on a handwritten
// page and shows every intermediate stage side by side.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/go-ansi"
	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/config"
	"github.com/ironsheep/vision-demos/internal/enhance"
	"github.com/ironsheep/vision-demos/internal/frame"
	"github.com/ironsheep/vision-demos/internal/ocr"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	windowFlow = "Optimized Processing Flow"
	sheetName  = "sheet.png"
)

type options struct {
	input      string
	outDir     string
	runOCR     bool
	language   string
	headless   bool
	sheetWidth int
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML settings file (default $VISION_CONFIG)")
		input       = flag.String("input", "", "grayscale source image (default from config)")
		outDir      = flag.String("out", "", "write every stage and the contact sheet to this directory")
		runOCR      = flag.Bool("ocr", false, "print the text recognized in the final stage")
		language    = flag.String("lang", "", "Tesseract language, e.g. eng or eng+deu (default from config)")
		headless    = flag.Bool("headless", false, "do not open the preview window")
		sheetWidth  = flag.Int("sheet-width", 0, "shrink the saved contact sheet to this width (0 keeps full size)")
		showVersion = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("doc-enhance %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  OpenCV:     %s\n", gocv.OpenCVVersion())
		fmt.Printf("  Tesseract:  %s\n", ocr.Version())
		return
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	color.Output = ansi.NewAnsiStdout()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	opts := options{
		input:      cfg.Enhance.Input,
		outDir:     *outDir,
		runOCR:     *runOCR,
		language:   cfg.Enhance.OCRLanguage,
		headless:   *headless,
		sheetWidth: *sheetWidth,
	}
	if *input != "" {
		opts.input = *input
	}
	if *language != "" {
		opts.language = *language
	}

	if err := run(cfg, opts); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, opts options) error {
	gray, err := enhance.Load(opts.input)
	if err != nil {
		log.Print("Error: load img fail")
		return err
	}
	defer gray.Close()

	if cfg.Debug() {
		log.Printf("loaded %s (%dx%d)", opts.input, gray.Cols(), gray.Rows())
	}

	stages, err := enhance.New(cfg.Enhance).Run(gray)
	if err != nil {
		return err
	}
	defer enhance.Close(stages)

	// OCR and the stage files use the images before titles are drawn.
	if opts.runOCR {
		if err := printText(cfg, stages, opts.language); err != nil {
			return err
		}
	}
	if opts.outDir != "" {
		paths, err := enhance.SaveStages(opts.outDir, stages)
		if err != nil {
			return err
		}
		for _, p := range paths {
			color.Green("wrote %s", p)
		}
	}

	enhance.TitleAll(stages)
	sheet, err := enhance.Montage(stages, cfg.Enhance.Columns)
	if err != nil {
		return err
	}
	defer sheet.Close()

	if opts.outDir != "" {
		path := filepath.Join(opts.outDir, sheetName)
		if err := enhance.SaveSheet(path, sheet, opts.sheetWidth); err != nil {
			return err
		}
		color.Green("wrote %s", path)
	}

	display := frame.NewDisplay(opts.headless)
	defer display.Close()
	display.Show(windowFlow, sheet)
	display.Wait()
	return nil
}

func printText(cfg *config.Config, stages []enhance.Stage, language string) error {
	final, ok := enhance.Find(stages, enhance.TitleFinal)
	if !ok {
		return fmt.Errorf("no %s stage", enhance.TitleFinal)
	}
	img, err := final.Mat.ToImage()
	if err != nil {
		return fmt.Errorf("failed to convert final stage: %w", err)
	}

	res, err := ocr.ExtractTextFromImage(img, ocr.Options{
		Language:       language,
		TessdataPrefix: cfg.Enhance.TessdataPrefix,
		Debug:          cfg.Debug(),
	})
	if err != nil {
		return err
	}

	color.Cyan("Recognized text (%d words, mean confidence %.0f%%):", len(res.Regions), res.MeanConfidence*100)
	fmt.Println(strings.TrimSpace(res.FullText))
	return nil
}
