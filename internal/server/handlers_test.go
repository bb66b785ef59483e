package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/vision-demos/internal/config"
	"github.com/ironsheep/vision-demos/internal/hsv"
	"github.com/ironsheep/vision-demos/internal/steer"
)

// createTestImageFile writes a width x height PNG filled with bg, with each
// rect in fills painted in its color, and returns its path.
func createTestImageFile(t *testing.T, width, height int, bg color.Color, fills map[image.Rectangle]color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, bg)
		}
	}
	for r, c := range fills {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, c)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and returns the decoded text content.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPError {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
			t.Fatalf("failed to decode tool result: %v", err)
		}
	}
	return nil
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
)

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New(nil, "")
	path := createTestImageFile(t, 100, 80, red, nil)

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	if err := callTool(t, s, "image_load", map[string]interface{}{"path": path}, &info); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("got %+v, want 100x80 png", info)
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache len = %d, want 1", s.cache.Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New(nil, "")
	path := createTestImageFile(t, 200, 150, green, nil)

	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}, &dims); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("got %+v, want 200x150", dims)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New(nil, "")

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"missing file", "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}},
		{"steer missing file", "vision_steer_image", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"enhance without output dir", "vision_enhance_document", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"bad argument type", "vision_sample_hsv", map[string]interface{}{"path": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mcpErr := callTool(t, s, tt.tool, tt.args, nil)
			if mcpErr == nil {
				t.Fatal("expected an error")
			}
			if mcpErr.Code != -32000 {
				t.Errorf("code = %d, want -32000", mcpErr.Code)
			}
		})
	}
}

func TestHandleToolsCall_SampleHSV(t *testing.T) {
	s := New(nil, "")
	path := createTestImageFile(t, 20, 20, white, map[image.Rectangle]color.Color{
		image.Rect(0, 0, 10, 20): red,
	})

	var single struct {
		HSV     hsv.HSV  `json:"hsv"`
		Matches []string `json:"matches"`
	}
	if err := callTool(t, s, "vision_sample_hsv", map[string]interface{}{"path": path, "x": 2, "y": 2}, &single); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if single.HSV != (hsv.HSV{H: 0, S: 255, V: 255}) {
		t.Errorf("HSV = %+v, want {0 255 255}", single.HSV)
	}
	if len(single.Matches) == 0 || single.Matches[0] != "red" {
		t.Errorf("Matches = %v, want red first", single.Matches)
	}

	var multi []struct {
		Label string `json:"label"`
		Color struct {
			Hex string `json:"hex"`
		} `json:"color"`
	}
	args := map[string]interface{}{
		"path": path,
		"points": []map[string]interface{}{
			{"x": 1, "y": 1, "label": "left"},
			{"x": 15, "y": 1, "label": "right"},
		},
	}
	if err := callTool(t, s, "vision_sample_hsv", args, &multi); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if len(multi) != 2 {
		t.Fatalf("got %d samples, want 2", len(multi))
	}
	if multi[0].Label != "left" || multi[0].Color.Hex != "#FF0000" {
		t.Errorf("left sample = %+v", multi[0])
	}
	if multi[1].Label != "right" || multi[1].Color.Hex != "#FFFFFF" {
		t.Errorf("right sample = %+v", multi[1])
	}
}

func TestHandleToolsCall_ColorCoverage(t *testing.T) {
	s := New(nil, "")
	path := createTestImageFile(t, 10, 10, white, map[image.Rectangle]color.Color{
		image.Rect(0, 0, 5, 10): green,
	})

	var res struct {
		Ranges []hsv.Coverage `json:"ranges"`
	}
	if err := callTool(t, s, "vision_color_coverage", map[string]interface{}{"path": path}, &res); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if len(res.Ranges) != len(hsv.Palette()) {
		t.Fatalf("got %d ranges, want %d", len(res.Ranges), len(hsv.Palette()))
	}
	for _, c := range res.Ranges {
		want := 0.0
		if c.Name == "green" {
			want = 50
		}
		if c.Percentage != want {
			t.Errorf("%s: %.1f%%, want %.1f%%", c.Name, c.Percentage, want)
		}
	}

	// Region covering only the green half.
	args := map[string]interface{}{
		"path":   path,
		"region": map[string]interface{}{"x1": 0, "y1": 0, "x2": 5, "y2": 10},
	}
	if err := callTool(t, s, "vision_color_coverage", args, &res); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	for _, c := range res.Ranges {
		if c.Name == "green" && c.Percentage != 100 {
			t.Errorf("green in region: %.1f%%, want 100%%", c.Percentage)
		}
	}

	args["region"] = map[string]interface{}{"x1": 50, "y1": 50, "x2": 60, "y2": 60}
	if err := callTool(t, s, "vision_color_coverage", args, nil); err == nil {
		t.Error("expected error for region outside the image")
	}
}

func TestHandleToolsCall_ClassifyLight(t *testing.T) {
	s := New(nil, "")
	path := createTestImageFile(t, 40, 40, black, map[image.Rectangle]color.Color{
		image.Rect(10, 10, 20, 20): red,
		image.Rect(10, 20, 20, 25): green,
	})

	tests := []struct {
		name string
		box  map[string]interface{}
		want hsv.Signal
	}{
		{"red wins", map[string]interface{}{"x1": 10, "y1": 10, "x2": 20, "y2": 25}, hsv.Red},
		{"green only", map[string]interface{}{"x1": 10, "y1": 20, "x2": 20, "y2": 25}, hsv.Green},
		{"reversed corners", map[string]interface{}{"x1": 20, "y1": 25, "x2": 10, "y2": 20}, hsv.Green},
		{"dark", map[string]interface{}{"x1": 25, "y1": 25, "x2": 35, "y2": 35}, hsv.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res classifyLightResult
			if err := callTool(t, s, "vision_classify_light", map[string]interface{}{"path": path, "box": tt.box}, &res); err != nil {
				t.Fatalf("Unexpected error: %+v", err)
			}
			if res.Color != tt.want {
				t.Errorf("color = %s, want %s (counts %+v)", res.Color, tt.want, res.Counts)
			}
		})
	}
}

func TestHandleToolsCall_SteerImage(t *testing.T) {
	s := New(nil, "")
	dir := t.TempDir()

	tests := []struct {
		name string
		rect image.Rectangle
		want steer.Direction
	}{
		{"left", image.Rect(50, 200, 150, 300), steer.TurnLeft},
		{"right", image.Rect(500, 200, 600, 300), steer.TurnRight},
		{"center", image.Rect(270, 200, 370, 300), steer.MoveForward},
		{"too small", image.Rect(50, 200, 60, 210), steer.None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestImageFile(t, 640, 480, white, map[image.Rectangle]color.Color{tt.rect: red})
			output := filepath.Join(dir, tt.name, "annotated.png")
			mask := filepath.Join(dir, tt.name, "mask.png")

			var res steerImageResult
			args := map[string]interface{}{"path": path, "output": output, "mask_output": mask}
			if err := callTool(t, s, "vision_steer_image", args, &res); err != nil {
				t.Fatalf("Unexpected error: %+v", err)
			}
			if res.Direction != tt.want {
				t.Errorf("direction = %q, want %q", res.Direction, tt.want)
			}
			if res.Found != (tt.want != steer.None) {
				t.Errorf("found = %v", res.Found)
			}
			if res.Width != 640 || res.Height != 480 {
				t.Errorf("size = %dx%d, want 640x480", res.Width, res.Height)
			}
			for _, p := range []string{output, mask} {
				if _, err := os.Stat(p); err != nil {
					t.Errorf("output missing: %v", err)
				}
			}
		})
	}
}

func TestHandleToolsCall_EnhanceDocument(t *testing.T) {
	s := New(nil, "")
	path := createTestImageFile(t, 300, 200, color.Gray{Y: 200}, map[image.Rectangle]color.Color{
		image.Rect(50, 100, 250, 104): color.Gray{Y: 30},
	})
	outDir := filepath.Join(t.TempDir(), "stages")

	var res enhanceDocumentResult
	args := map[string]interface{}{"path": path, "output_dir": outDir, "sheet_width": 600}
	if err := callTool(t, s, "vision_enhance_document", args, &res); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	if len(res.Stages) != 10 {
		t.Fatalf("got %d stage files, want 10", len(res.Stages))
	}
	if filepath.Base(res.Stages[0]) != "01-original-image.png" || filepath.Base(res.Stages[9]) != "10-final.png" {
		t.Errorf("unexpected stage names: %s .. %s", res.Stages[0], res.Stages[9])
	}
	if res.OCR != nil {
		t.Error("OCR should be omitted unless requested")
	}

	f, err := os.Open(res.Sheet)
	if err != nil {
		t.Fatalf("sheet missing: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("sheet decode: %v", err)
	}
	// 5 x 2 tiles of 300x200 scaled to 600 wide.
	if cfg.Width != 600 || cfg.Height != 160 {
		t.Errorf("sheet = %dx%d, want 600x160", cfg.Width, cfg.Height)
	}
}

func TestHandleToolsCall_TrafficLightsMissingModel(t *testing.T) {
	cfg := config.Default()
	cfg.Traffic.Model = filepath.Join(t.TempDir(), "missing.onnx")
	s := New(cfg, "")
	defer s.Close()

	path := createTestImageFile(t, 320, 180, black, nil)
	mcpErr := callTool(t, s, "vision_traffic_lights", map[string]interface{}{"path": path}, nil)
	if mcpErr == nil {
		t.Fatal("expected an error for a missing model")
	}
	if s.detector != nil {
		t.Error("detector should stay unloaded after a failure")
	}
}

func TestHandleToolsCall_TrafficLights(t *testing.T) {
	model := os.Getenv("VISION_YOLO_MODEL")
	if model == "" {
		t.Skip("VISION_YOLO_MODEL not set")
	}

	cfg := config.Default()
	cfg.Traffic.Model = model
	s := New(cfg, "")
	defer s.Close()

	path := createTestImageFile(t, 1280, 720, black, nil)
	output := filepath.Join(t.TempDir(), "out.png")

	var res trafficLightsResult
	if err := callTool(t, s, "vision_traffic_lights", map[string]interface{}{"path": path, "output": output}, &res); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if res.Width != 640 || res.Height != 360 {
		t.Errorf("frame = %dx%d, want 640x360", res.Width, res.Height)
	}
	if len(res.Lights) != 0 {
		t.Errorf("found %d lights in a black frame", len(res.Lights))
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if s.detector == nil {
		t.Error("detector should be cached after the first call")
	}
}
