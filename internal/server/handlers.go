package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/vision-vote/internal/pipeline"
	"github.com/ironsheep/vision-vote/internal/rounds"
	"github.com/ironsheep/vision-vote/internal/session"
	"github.com/ironsheep/vision-vote/internal/vote"
)

// errInvalidArguments marks tool calls whose arguments could not be used.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_recognize", "tag_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602; other tool errors return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if errors.Is(err, errInvalidArguments) {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "ocr_recognize":
		return s.handleRecognize(ctx, args)
	case "tag_detect":
		return s.handleDetect(ctx, args)

	case "vote_session_create":
		return s.handleSessionCreate(args)
	case "vote_session_add_frame":
		return s.handleSessionAddFrame(ctx, args)
	case "vote_session_status":
		return s.handleSessionStatus(args)
	case "vote_session_clear":
		return s.handleSessionClear(args)

	case "service_status":
		return s.service.Status(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Absent arguments decode as zero values.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

func requirePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	return nil
}

// === Single image handlers ===

type recognizeArgs struct {
	Path          string  `json:"path"`
	UseVote       bool    `json:"use_vote"`
	VoteRounds    int     `json:"vote_rounds"`
	VoteThreshold float64 `json:"vote_threshold"`
	Backend       string  `json:"backend"`
}

func (s *Server) handleRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a recognizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}

	return s.service.Recognize(ctx, a.Path, pipeline.RecognizeOptions{
		UseVote:       a.UseVote,
		VoteRounds:    a.VoteRounds,
		VoteThreshold: a.VoteThreshold,
		Backend:       a.Backend,
	})
}

type detectArgs struct {
	Path          string  `json:"path"`
	Confidence    float64 `json:"confidence"`
	UseVote       bool    `json:"use_vote"`
	VoteRounds    int     `json:"vote_rounds"`
	VoteThreshold float64 `json:"vote_threshold"`
	Backend       string  `json:"backend"`
}

func (s *Server) handleDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}

	return s.service.Detect(ctx, a.Path, pipeline.DetectOptions{
		Confidence:    a.Confidence,
		UseVote:       a.UseVote,
		VoteRounds:    a.VoteRounds,
		VoteThreshold: a.VoteThreshold,
		Backend:       a.Backend,
	})
}

// === Vote session handlers ===

type sessionCreateArgs struct {
	WindowSize int     `json:"window_size"`
	Threshold  float64 `json:"threshold"`
}

func (s *Server) handleSessionCreate(args json.RawMessage) (interface{}, error) {
	var a sessionCreateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	return s.sessions.Create(a.WindowSize, a.Threshold), nil
}

type addFrameArgs struct {
	SessionID  string  `json:"session_id"`
	Path       string  `json:"path"`
	NumberCode string  `json:"number_code"`
	Confidence float64 `json:"confidence"`
	Backend    string  `json:"backend"`
}

type addFrameResult struct {
	Recognition *pipeline.RecognizeResponse `json:"recognition,omitempty"`

	*session.FrameResult
}

func (s *Server) handleSessionAddFrame(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a addFrameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", errInvalidArguments)
	}
	if _, err := s.sessions.Status(a.SessionID); err != nil {
		return nil, err
	}

	var out addFrameResult
	code, conf := a.NumberCode, a.Confidence

	if a.Path != "" {
		rec, err := s.service.Recognize(ctx, a.Path, pipeline.RecognizeOptions{Backend: a.Backend})
		if err != nil {
			return nil, err
		}

		code = ""
		if rec.NumberCode != nil {
			code = *rec.NumberCode
		}
		conf = rec.Confidence
		out.Recognition = rec
	} else if err := rounds.ValidateResult(vote.RawResult{Value: code, Confidence: conf}); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}

	result, err := s.sessions.AddFrame(a.SessionID, code, conf)
	if err != nil {
		return nil, err
	}

	out.FrameResult = result
	return out, nil
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleSessionStatus(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", errInvalidArguments)
	}

	return s.sessions.Status(a.SessionID)
}

func (s *Server) handleSessionClear(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	if a.SessionID != "" {
		if err := s.sessions.Delete(a.SessionID); err != nil {
			return nil, err
		}
		return map[string]interface{}{"session_id": a.SessionID, "cleared": true}, nil
	}

	return map[string]interface{}{"expired_cleared": s.sessions.Sweep()}, nil
}
