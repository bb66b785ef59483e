// Package steer turns the largest red region of a camera frame into a
// steering hint.
//
// The frame is converted to HSV and thresholded with one or more ranges (red
// needs two because its hue wraps around zero). The summed mask is cleaned
// with a morphological open followed by a close, and its external contours
// are extracted. Only the largest contour is considered and only when its
// area is strictly above the configured minimum. Its centroid, compared with
// the frame center and a dead band, decides between turning left, turning
// right and moving forward.
package steer
