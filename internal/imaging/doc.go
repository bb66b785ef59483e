// Package imaging provides still-image helpers shared by the vision tools.
//
// It holds a thread-safe decode cache, color sampling that reports both the
// usual web formats and OpenCV-scale HSV, and helpers that crop or shrink an
// image.Image to a file. Frame processing itself lives in the gocv-based
// packages; this package only deals with Go image types.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Regions
// are image.Rectangle values: Min is inclusive, Max is exclusive.
//
// # Color Representation
//
// Sampled colors are returned as:
//   - Hex: "#RRGGBB" (alpha excluded)
//   - RGB / RGBA: 8-bit components
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//   - HSV: OpenCV scale, Hue (0-180), Saturation and Value (0-255)
package imaging
