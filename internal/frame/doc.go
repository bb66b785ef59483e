// Package frame moves video frames between devices, files and windows.
//
// A Source yields BGR frames as gocv Mats. Open picks the backend from a
// source string:
//   - "0", "1", ...: camera index through OpenCV
//   - "v4l:/dev/video0": direct V4L2 capture (Linux only)
//   - anything else: a video file or stream URL through OpenCV
//
// Loop drives a Source until it ends, the context is cancelled or the user
// presses q in a Display window. Recorder writes annotated frames back out
// as MJPEG.
package frame
