// Package enhance runs a fixed chain of OpenCV filters that turns a
// photographed handwritten page into a clean black-on-white image, keeping
// every intermediate stage for inspection.
//
// The chain, in order:
//
//  1. CLAHE for local contrast
//  2. Morphological top-hat with a large rectangular kernel to lift strokes
//     off an uneven background
//  3. Gaussian blur of the top-hat
//  4. Weighted blend of the original and the blurred top-hat
//  5. Inverted Gaussian adaptive threshold
//  6. Elliptical close, then elliptical open, to drop specks
//  7. 3x3 sharpening convolution
//  8. Median blur
//  9. Bitwise NOT so text ends up black on white
//
// Stage Mats are owned by the caller and released with Close.
package enhance
