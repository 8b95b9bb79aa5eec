// Package httpapi serves the recognition, detection and vote-session
// operations over HTTP.
//
// Every response uses the same envelope:
//
//	{"success": true, "data": {...}}
//	{"success": false, "error": "...", "details": "..."}
//
// Images are uploaded as multipart form field "image" and staged in the
// configured temporary directory for the lifetime of one request.
package httpapi
