// Package pipeline turns one staged image into an endpoint response.
//
// A Service holds named recognition and detection backends. Recognize and
// Detect select a backend, run it once (single-shot) or several times
// (voting), apply vote.Recognition or vote.Detections, and build the
// response documents served by the HTTP and MCP front-ends.
//
// Single-shot errors are returned to the caller. In voting mode a failed
// round is logged and skipped; only cancellation aborts the request.
package pipeline
