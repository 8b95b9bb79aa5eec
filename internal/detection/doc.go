// Package detection locates number tags in images.
//
// Two backends implement rounds.Detector:
//
//   - TagDetector: an in-process contour detector for white labels with dark
//     print. It needs no model and is the default backend.
//   - CommandDetector: runs an external detection program (for example a YOLO
//     script) and reads its JSON output.
//
// # Contour Pipeline
//
// TagDetector follows a fixed sequence:
//
//  1. Grayscale conversion and a binary threshold at 200 (white label mask)
//  2. Morphological close (dilate, then erode) to bridge small gaps
//  3. Connected regions of the mask, each measured with its holes filled
//  4. Geometric filters: area, minimum size, landscape aspect ratio
//  5. Content filter: the share of dark (gray < 120) pixels inside the box
//     must look like printed text, neither empty nor mostly dark
//  6. Overlap merge, sort by area (largest first), keep at most three
//
// Every accepted tag gets confidence 0.85 and class "number_tag".
//
// # Coordinate System
//
// Boxes are [x1, y1, x2, y2] with the origin at the top-left corner of the
// image. x2 and y2 are exclusive.
package detection
