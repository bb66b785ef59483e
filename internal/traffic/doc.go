// Package traffic finds traffic lights with a YOLOv8 ONNX model and reads
// their color from the pixels inside each box.
//
// Detection runs through OpenCV's DNN module. The raw network output is
// decoded here, filtered to the traffic light class, de-duplicated with
// non-maximum suppression, and every surviving box is classified red, green
// or yellow by HSV pixel counts.
package traffic
