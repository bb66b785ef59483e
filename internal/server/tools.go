package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// regionProperty describes an optional {x1,y1,x2,y2} rectangle.
func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": intProperty("Left edge X coordinate (0-based)"),
			"y1": intProperty("Top edge Y coordinate (0-based)"),
			"x2": intProperty("Right edge X coordinate (exclusive)"),
			"y2": intProperty("Bottom edge Y coordinate (exclusive)"),
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Color Operations
		{
			Name:        "vision_sample_hsv",
			Description: "Sample the color at one pixel, or at a list of labeled points. Reports hex, RGB, HSL and OpenCV-scale HSV (H 0-180, S/V 0-255) plus the names of the detection ranges the color falls in.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x":    intProperty("X coordinate of a single sample"),
					"y":    intProperty("Y coordinate of a single sample"),
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Points to sample instead of x/y",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     intProperty("X coordinate"),
								"y":     intProperty("Y coordinate"),
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vision_color_coverage",
			Description: "Report the share of pixels falling in each named HSV range (traffic red/green/yellow and the two obstacle reds). Use this to tune thresholds against a sample image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional region to measure. Defaults to the whole image."),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vision_classify_light",
			Description: "Classify the traffic light color inside a box by counting red, green and yellow pixels. The strictly largest count wins; ties are Unknown.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"box":  regionProperty("Bounding box of the light"),
				},
				"required": []string{"path", "box"},
			},
		},

		// Pipelines
		{
			Name:        "vision_steer_image",
			Description: "Find the largest red object in a still image and decide Turn Left, Turn Right or Move Forward from its centroid.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the annotated image",
					},
					"mask_output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the binary red mask",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "vision_enhance_document",
			Description: "Run the ten-stage document enhancement chain on an image, write every stage as PNG and a titled contact sheet, and optionally OCR the final stage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory receiving the stage images",
					},
					"ocr": map[string]interface{}{
						"type":        "boolean",
						"description": "Run OCR over the final stage",
						"default":     false,
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Defaults to the configured language.",
					},
					"sheet_width": intProperty("Maximum width of the contact sheet. Default 1600, 0 for full size."),
				},
				"required": []string{"path", "output_dir"},
			},
		},
		{
			Name:        "vision_traffic_lights",
			Description: "Detect traffic lights in a still image with the YOLOv8 model and classify each one's color. The image is resized to the configured frame size first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the annotated image",
					},
					"snapshots_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory receiving a PNG crop of every light",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
