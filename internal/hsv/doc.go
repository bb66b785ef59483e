// Package hsv provides OpenCV-compatible HSV color ranges and pure-Go pixel
// counting over image.Image values.
//
// # Scale
//
// All values use the 8-bit scale OpenCV produces for COLOR_BGR2HSV:
//   - H: 0-180 (degrees divided by two)
//   - S: 0-255
//   - V: 0-255
//
// Ranges are inclusive on both ends, matching cv::inRange, so the same Range
// can be handed to gocv.InRangeWithScalar or evaluated here without OpenCV.
//
// # Signals
//
// Traffic light classification compares the pixel counts of three ranges and
// picks the strictly largest one. Ties and all-zero counts classify as
// Unknown. The same rule backs both the gocv detector and Classify.
package hsv
