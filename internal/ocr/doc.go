// Package ocr reads number codes from images.
//
// Two backends implement rounds.Recognizer:
//
//   - TesseractRecognizer: in-process recognition through Tesseract
//     (gosseract/v2), restricted to digits.
//   - CommandRecognizer: runs an external recognition program and reads its
//     JSON output.
//
// Both reduce the raw text to a three-digit code with ExtractNumberCode and
// report (code, confidence) or an empty code when nothing usable was read.
//
// # Prerequisites
//
// The Tesseract backend links against libtesseract and needs the language
// data for the configured language ("eng" by default):
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Tag Cropping
//
// When TagCrop is enabled the recognizer first looks for a white number tag
// with detection.FindTags and reads only the padded crop of the largest tag.
// Images without a recognizable tag are read whole.
//
// # Preprocessing
//
// Crops are upscaled when small and their lightness contrast is stretched
// before OCR (see imaging.PrepareForOCR).
package ocr
