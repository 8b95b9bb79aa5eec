// Package server implements the MCP (Model Context Protocol) server for
// number code recognition and tag detection.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Single image:
//   - ocr_recognize: Read the number code, optionally by multi-round vote
//   - tag_detect: Locate number tags, optionally by multi-round vote
//
// Vote sessions, for a stream of frames from one camera:
//   - vote_session_create: Start a sliding-window session
//   - vote_session_add_frame: Recognize or record one frame
//   - vote_session_status: Inspect the window and the confirmed code
//   - vote_session_clear: Delete one session or sweep expired ones
//
// Service:
//   - service_status: Backends, availability and defaults
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for unusable arguments, -32000 for any other tool failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// Stdout carries protocol traffic only; logs go to stderr.
package server
