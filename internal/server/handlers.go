package server

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/ironsheep/vision-demos/internal/enhance"
	"github.com/ironsheep/vision-demos/internal/hsv"
	"github.com/ironsheep/vision-demos/internal/imaging"
	"github.com/ironsheep/vision-demos/internal/ocr"
	"github.com/ironsheep/vision-demos/internal/steer"
	"github.com/ironsheep/vision-demos/internal/traffic"
)

// Contact sheet defaults for vision_enhance_document.
const (
	SheetFileName     = "sheet.png"
	DefaultSheetWidth = 1600
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "vision_steer_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug() {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Color Operations
	case "vision_sample_hsv":
		return s.handleSampleHSV(args)
	case "vision_color_coverage":
		return s.handleColorCoverage(args)
	case "vision_classify_light":
		return s.handleClassifyLight(args)

	// Pipelines
	case "vision_steer_image":
		return s.handleSteerImage(args)
	case "vision_enhance_document":
		return s.handleEnhanceDocument(args)
	case "vision_traffic_lights":
		return s.handleTrafficLights(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// regionArgs is the {x1,y1,x2,y2} rectangle shared by several tools.
type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r regionArgs) rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// readColor loads path as a BGR Mat. The caller closes it.
func readColor(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("failed to load image %s", path)
	}
	return img, nil
}

// writeMat writes m to path, creating parent directories.
func writeMat(path string, m gocv.Mat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if ok := gocv.IMWrite(path, m); !ok {
		return fmt.Errorf("failed to write %s", path)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Color Operation Handlers ===

type sampleHSVArgs struct {
	Path   string                 `json:"path"`
	X      int                    `json:"x"`
	Y      int                    `json:"y"`
	Points []imaging.LabeledPoint `json:"points"`
}

func (s *Server) handleSampleHSV(args json.RawMessage) (interface{}, error) {
	var a sampleHSVArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if len(a.Points) > 0 {
		return imaging.SampleColorsMulti(img, a.Points)
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type colorCoverageArgs struct {
	Path   string      `json:"path"`
	Region *regionArgs `json:"region"`
}

type colorCoverageResult struct {
	Region image.Rectangle `json:"region"`
	Ranges []hsv.Coverage  `json:"ranges"`
}

func (s *Server) handleColorCoverage(args json.RawMessage) (interface{}, error) {
	var a colorCoverageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	rect := img.Bounds()
	if a.Region != nil {
		rect = imaging.ClampRect(a.Region.rect(), img.Bounds())
		if rect.Empty() {
			return nil, fmt.Errorf("region %v outside image bounds %v", a.Region.rect(), img.Bounds())
		}
	}

	return &colorCoverageResult{
		Region: rect,
		Ranges: hsv.MeasureCoverage(img, rect, hsv.Palette()...),
	}, nil
}

type classifyLightArgs struct {
	Path string     `json:"path"`
	Box  regionArgs `json:"box"`
}

type classifyLightResult struct {
	Color  hsv.Signal          `json:"color"`
	Counts traffic.ColorCounts `json:"counts"`
}

func (s *Server) handleClassifyLight(args json.RawMessage) (interface{}, error) {
	var a classifyLightArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	c := hsv.Count(img, a.Box.rect().Canon(), hsv.TrafficRed, hsv.TrafficGreen, hsv.TrafficYellow)
	counts := traffic.ColorCounts{Red: c[0], Green: c[1], Yellow: c[2]}
	return &classifyLightResult{Color: counts.Signal(), Counts: counts}, nil
}

// === Pipeline Handlers ===

type steerImageArgs struct {
	Path       string `json:"path"`
	Output     string `json:"output"`
	MaskOutput string `json:"mask_output"`
}

type steerImageResult struct {
	steer.Result
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Output     string `json:"output,omitempty"`
	MaskOutput string `json:"mask_output,omitempty"`
}

func (s *Server) handleSteerImage(args json.RawMessage) (interface{}, error) {
	var a steerImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	img, err := readColor(a.Path)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	d := steer.NewDetector(s.cfg.Steer)
	defer d.Close()

	res, err := d.Process(img)
	if err != nil {
		return nil, err
	}

	out := &steerImageResult{Result: res, Width: img.Cols(), Height: img.Rows()}
	if a.MaskOutput != "" {
		if err := writeMat(a.MaskOutput, d.Mask()); err != nil {
			return nil, err
		}
		out.MaskOutput = a.MaskOutput
	}
	if a.Output != "" {
		steer.Annotate(&img, res)
		if err := writeMat(a.Output, img); err != nil {
			return nil, err
		}
		out.Output = a.Output
	}
	return out, nil
}

type enhanceDocumentArgs struct {
	Path       string `json:"path"`
	OutputDir  string `json:"output_dir"`
	OCR        bool   `json:"ocr"`
	Language   string `json:"language"`
	SheetWidth *int   `json:"sheet_width"`
}

type enhanceDocumentResult struct {
	Stages []string    `json:"stages"`
	Sheet  string      `json:"sheet"`
	OCR    *ocr.Result `json:"ocr,omitempty"`
}

func (s *Server) handleEnhanceDocument(args json.RawMessage) (interface{}, error) {
	var a enhanceDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		return nil, fmt.Errorf("output_dir is required")
	}
	width := DefaultSheetWidth
	if a.SheetWidth != nil {
		width = *a.SheetWidth
	}

	gray, err := enhance.Load(a.Path)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	stages, err := enhance.New(s.cfg.Enhance).Run(gray)
	if err != nil {
		return nil, err
	}
	defer enhance.Close(stages)

	result := &enhanceDocumentResult{}

	// OCR and the stage files use the untitled images.
	if a.OCR {
		final, _ := enhance.Find(stages, enhance.TitleFinal)
		img, err := final.Mat.ToImage()
		if err != nil {
			return nil, fmt.Errorf("failed to convert final stage: %w", err)
		}
		lang := a.Language
		if lang == "" {
			lang = s.cfg.Enhance.OCRLanguage
		}
		result.OCR, err = ocr.ExtractTextFromImage(img, ocr.Options{
			Language:       lang,
			TessdataPrefix: s.cfg.Enhance.TessdataPrefix,
			Debug:          s.cfg.Debug(),
		})
		if err != nil {
			return nil, err
		}
	}

	result.Stages, err = enhance.SaveStages(a.OutputDir, stages)
	if err != nil {
		return nil, err
	}

	enhance.TitleAll(stages)
	sheet, err := enhance.Montage(stages, s.cfg.Enhance.Columns)
	if err != nil {
		return nil, err
	}
	defer sheet.Close()

	result.Sheet = filepath.Join(a.OutputDir, SheetFileName)
	if err := enhance.SaveSheet(result.Sheet, sheet, width); err != nil {
		return nil, err
	}
	return result, nil
}

type trafficLightsArgs struct {
	Path         string `json:"path"`
	Output       string `json:"output"`
	SnapshotsDir string `json:"snapshots_dir"`
}

type trafficLightsResult struct {
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Lights    []traffic.Light `json:"lights"`
	Output    string          `json:"output,omitempty"`
	Snapshots []string        `json:"snapshots,omitempty"`
}

func (s *Server) handleTrafficLights(args json.RawMessage) (interface{}, error) {
	var a trafficLightsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	img, err := readColor(a.Path)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	if w, h := s.cfg.Traffic.FrameWidth, s.cfg.Traffic.FrameHeight; w > 0 && h > 0 {
		gocv.Resize(img, &frame, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	} else {
		img.CopyTo(&frame)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.trafficDetector()
	if err != nil {
		return nil, err
	}
	lights, err := d.Detect(frame)
	if err != nil {
		return nil, err
	}

	result := &trafficLightsResult{
		Width:  frame.Cols(),
		Height: frame.Rows(),
		Lights: lights,
	}

	if a.SnapshotsDir != "" && len(lights) > 0 {
		src, err := frame.ToImage()
		if err != nil {
			return nil, fmt.Errorf("failed to convert frame: %w", err)
		}
		result.Snapshots, err = traffic.SaveSnapshots(a.SnapshotsDir, 0, src, lights)
		if err != nil {
			return nil, err
		}
	}
	if a.Output != "" {
		traffic.Draw(&frame, lights)
		if err := writeMat(a.Output, frame); err != nil {
			return nil, err
		}
		result.Output = a.Output
	}
	return result, nil
}
