// Package imaging provides the image plumbing around the vision black boxes.
//
// It loads and caches decoded images, stages uploaded bytes into per-request
// temporary files, crops padded regions around detected tags, and prepares
// small or low-contrast crops for OCR.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner.
// Boxes are [x1, y1, x2, y2] with (x1,y1) inclusive and (x2,y2) exclusive.
//
// # Temporary Files
//
// Backends that shell out to an external program need a file path. Stage
// writes an upload to a uniquely named file and returns a handle whose Close
// removes the file and drops it from the cache. Callers must defer Close
// immediately after a successful Stage so the file is released on every path.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Staged files are owned by a single
// request and must not be shared.
package imaging
