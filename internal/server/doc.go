// Package server implements the MCP (Model Context Protocol) server that
// exposes the vision pipelines as tools.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, and
// answers initialize, tools/list, tools/call and ping. Unknown methods get
// error -32601; tool failures get -32000 with the Go error as data.
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Color Operations:
//   - vision_sample_hsv: Color at one or more pixels, with OpenCV-scale HSV
//   - vision_color_coverage: Share of pixels in each named HSV range
//   - vision_classify_light: Traffic light color of a box
//
// Pipelines:
//   - vision_steer_image: Red obstacle steering on a still image
//   - vision_enhance_document: Document enhancement stages, sheet and OCR
//   - vision_traffic_lights: YOLOv8 traffic light detection on a still image
//
// Decoded images are cached by path for the life of the process. The YOLO
// model is loaded on the first vision_traffic_lights call and reused.
//
// # Usage
//
//	srv := server.New(cfg, version)
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
