// Package ocr reads text back out of images with Tesseract (via
// gosseract/v2).
//
// The document pipeline uses it to check how legible the enhanced page is.
// Tesseract and the language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Set Options.TessdataPrefix when the language files live outside the
// default search path.
package ocr
