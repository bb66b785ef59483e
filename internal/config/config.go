// Package config loads the YAML settings shared by the vision commands.
//
// Every field has a default taken from the tuned constants of the demos, so a
// config file only needs the keys it changes. Command-line flags are applied
// by the commands after Load and take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ironsheep/vision-demos/internal/hsv"
)

// Environment variables consulted by FromEnv.
const (
	EnvConfigPath = "VISION_CONFIG"
	EnvLogLevel   = "VISION_LOG_LEVEL"
)

// Config is the root of the YAML document.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Camera   Camera  `yaml:"camera"`
	Steer    Steer   `yaml:"steer"`
	Enhance  Enhance `yaml:"enhance"`
	Traffic  Traffic `yaml:"traffic"`
}

// Camera selects and shapes the frame source.
type Camera struct {
	// Source is a camera index ("0"), a file path or URL, or "v4l:/dev/videoN".
	Source string `yaml:"source"`
	// Width and Height request a capture size; zero keeps the device default.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Mirror flips frames horizontally.
	Mirror bool `yaml:"mirror"`
	// Timeout is the V4L2 frame wait in seconds.
	Timeout int `yaml:"timeout"`
}

// Steer configures red obstacle detection.
type Steer struct {
	Ranges     []hsv.Range `yaml:"ranges"`
	KernelSize int         `yaml:"kernel_size"`
	MinArea    float64     `yaml:"min_area"`
	DeadBand   int         `yaml:"dead_band"`
}

// Enhance configures the document enhancement chain.
type Enhance struct {
	Input          string  `yaml:"input"`
	ClipLimit      float64 `yaml:"clip_limit"`
	TileGrid       int     `yaml:"tile_grid"`
	TophatKernel   int     `yaml:"tophat_kernel"`
	BlurKernel     int     `yaml:"blur_kernel"`
	OriginalWeight float64 `yaml:"original_weight"`
	BlurredWeight  float64 `yaml:"blurred_weight"`
	Gamma          float64 `yaml:"gamma"`
	BlockSize      int     `yaml:"block_size"`
	ThresholdC     float64 `yaml:"threshold_c"`
	CloseKernel    int     `yaml:"close_kernel"`
	OpenKernel     int     `yaml:"open_kernel"`
	MedianAperture int     `yaml:"median_aperture"`
	Columns        int     `yaml:"columns"`
	OCRLanguage    string  `yaml:"ocr_language"`
	TessdataPrefix string  `yaml:"tessdata_prefix"`
}

// Traffic configures YOLO traffic light detection.
type Traffic struct {
	Model       string  `yaml:"model"`
	InputSize   int     `yaml:"input_size"`
	Confidence  float64 `yaml:"confidence"`
	NMS         float64 `yaml:"nms"`
	ClassID     int     `yaml:"class_id"`
	FrameWidth  int     `yaml:"frame_width"`
	FrameHeight int     `yaml:"frame_height"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Camera: Camera{
			Source:  "0",
			Timeout: 5,
		},
		Steer: Steer{
			Ranges:     []hsv.Range{hsv.ObstacleRedLow, hsv.ObstacleRedHigh},
			KernelSize: 5,
			MinArea:    500,
			DeadBand:   50,
		},
		Enhance: Enhance{
			Input:          "./img/handwritten.png",
			ClipLimit:      3.0,
			TileGrid:       8,
			TophatKernel:   100,
			BlurKernel:     15,
			OriginalWeight: 0.4,
			BlurredWeight:  0.6,
			Gamma:          5,
			BlockSize:      21,
			ThresholdC:     12,
			CloseKernel:    3,
			OpenKernel:     3,
			MedianAperture: 1,
			Columns:        5,
			OCRLanguage:    "eng",
		},
		Traffic: Traffic{
			Model:       "yolov8n.onnx",
			InputSize:   640,
			Confidence:  0.5,
			NMS:         0.7,
			ClassID:     9,
			FrameWidth:  640,
			FrameHeight: 360,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by VISION_CONFIG (if set) and applies
// VISION_LOG_LEVEL.
func FromEnv() (*Config, error) {
	return Resolve("")
}

// Resolve loads path, or the file named by VISION_CONFIG when path is
// empty, and applies VISION_LOG_LEVEL.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// Debug reports whether debug logging was requested.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Validate rejects settings the OpenCV calls would fail on.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Steer.Ranges) == 0 {
		errs = append(errs, errors.New("steer: at least one color range required"))
	}
	for _, r := range c.Steer.Ranges {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("steer: %w", err))
		}
	}
	if c.Steer.KernelSize < 1 {
		errs = append(errs, fmt.Errorf("steer: kernel_size %d must be positive", c.Steer.KernelSize))
	}
	if c.Steer.DeadBand < 0 {
		errs = append(errs, fmt.Errorf("steer: dead_band %d must not be negative", c.Steer.DeadBand))
	}

	e := c.Enhance
	if e.TileGrid < 1 || e.TophatKernel < 1 || e.CloseKernel < 1 || e.OpenKernel < 1 {
		errs = append(errs, errors.New("enhance: kernel and tile sizes must be positive"))
	}
	if e.BlurKernel%2 == 0 {
		errs = append(errs, fmt.Errorf("enhance: blur_kernel %d must be odd", e.BlurKernel))
	}
	if e.BlockSize < 3 || e.BlockSize%2 == 0 {
		errs = append(errs, fmt.Errorf("enhance: block_size %d must be odd and at least 3", e.BlockSize))
	}
	if e.MedianAperture < 1 || e.MedianAperture%2 == 0 {
		errs = append(errs, fmt.Errorf("enhance: median_aperture %d must be odd", e.MedianAperture))
	}
	if e.Columns < 1 {
		errs = append(errs, fmt.Errorf("enhance: columns %d must be positive", e.Columns))
	}

	t := c.Traffic
	if t.InputSize < 32 || t.InputSize%32 != 0 {
		errs = append(errs, fmt.Errorf("traffic: input_size %d must be a multiple of 32", t.InputSize))
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		errs = append(errs, fmt.Errorf("traffic: confidence %.2f outside [0,1]", t.Confidence))
	}
	if t.NMS < 0 || t.NMS > 1 {
		errs = append(errs, fmt.Errorf("traffic: nms %.2f outside [0,1]", t.NMS))
	}
	if t.ClassID < 0 {
		errs = append(errs, fmt.Errorf("traffic: class_id %d must not be negative", t.ClassID))
	}

	return errors.Join(errs...)
}
