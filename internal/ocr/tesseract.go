package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// ErrNoImage is returned for a nil or zero-sized image.
var ErrNoImage = errors.New("ocr: no image")

// Options configures a Tesseract run.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu".
	// Several codes may be joined with "+".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata.
	TessdataPrefix string

	// Debug logs failures that are otherwise tolerated, such as missing
	// word boxes.
	Debug bool
}

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// TextRegion is a recognized word with its location and confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result contains the text extracted from an image.
type Result struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions holds individual words. It is empty when Tesseract cannot
	// report word boxes; FullText is still filled in.
	Regions []TextRegion `json:"regions"`

	// MeanConfidence averages the word confidences, 0 with no words.
	MeanConfidence float64 `json:"mean_confidence"`
}

// ExtractText performs OCR on an image file.
func ExtractText(imagePath string, opts Options) (*Result, error) {
	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return recognize(client, opts.Debug)
}

// ExtractTextFromImage performs OCR on an in-memory image. The image is
// handed to Tesseract as PNG bytes, so no temporary file is written.
func ExtractTextFromImage(img image.Image, opts Options) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoImage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return recognize(client, opts.Debug)
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

func newClient(opts Options) (*gosseract.Client, error) {
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	client := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

// engine is the part of *gosseract.Client that recognize reads results from.
type engine interface {
	Text() (string, error)
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
}

// recognize returns the page text even when word boxes are unavailable.
func recognize(client engine, debug bool) (*Result, error) {
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &Result{
		FullText: text,
		Regions:  []TextRegion{},
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		if debug {
			log.Printf("ocr: word boxes unavailable: %v", err)
		}
		return result, nil
	}

	var sum float64
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		conf := box.Confidence / 100.0
		sum += conf
		result.Regions = append(result.Regions, TextRegion{
			Text:       box.Word,
			Confidence: conf,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	if n := len(result.Regions); n > 0 {
		result.MeanConfidence = sum / float64(n)
	}
	return result, nil
}
