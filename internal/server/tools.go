package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var backendProperty = map[string]interface{}{
	"type":        "string",
	"description": "Backend name (see service_status). Default: the configured default backend",
}

var useVoteProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Run several rounds and report only a result that enough rounds agree on. Default false",
	"default":     false,
}

var voteRoundsProperty = map[string]interface{}{
	"type":        "integer",
	"description": "Number of rounds when use_vote is true. Default 5",
	"default":     5,
}

var voteThresholdProperty = map[string]interface{}{
	"type":        "number",
	"description": "Fraction of usable rounds that must agree, in (0, 1]. Default 0.6",
	"default":     0.6,
}

var sessionIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Session ID returned by vote_session_create",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Single image operations
		{
			Name:        "ocr_recognize",
			Description: "Read the 3-digit number code on a tag in an image. With use_vote the image is read several times and the code is only returned when enough rounds agree.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty,
					"use_vote":       useVoteProperty,
					"vote_rounds":    voteRoundsProperty,
					"vote_threshold": voteThresholdProperty,
					"backend":        backendProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "tag_detect",
			Description: "Locate number tags in an image and return their bounding boxes [x1, y1, x2, y2]. With use_vote the boxes of several rounds are clustered and only the box most rounds agree on is returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum detection confidence in (0, 1]. Default 0.5",
						"default":     0.5,
					},
					"use_vote":       useVoteProperty,
					"vote_rounds":    voteRoundsProperty,
					"vote_threshold": voteThresholdProperty,
					"backend":        backendProperty,
				},
				"required": []string{"path"},
			},
		},

		// Streaming vote sessions
		{
			Name:        "vote_session_create",
			Description: "Start a vote session for a stream of frames. A code is confirmed once it fills the given share of the most recent window_size frames.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"window_size": map[string]interface{}{
						"type":        "integer",
						"description": "Number of recent frames that vote. Default 5",
						"default":     5,
					},
					"threshold": voteThresholdProperty,
				},
			},
		},
		{
			Name:        "vote_session_add_frame",
			Description: "Add one frame to a vote session. Pass path to recognize an image, or number_code and confidence for an already recognized frame. Returns a confirmation when this frame confirmed a code.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"path":       pathProperty,
					"number_code": map[string]interface{}{
						"type":        "string",
						"description": "Recognized code; omit for a frame that read nothing",
					},
					"confidence": map[string]interface{}{
						"type":        "number",
						"description": "Confidence of number_code in [0, 1]",
					},
					"backend": backendProperty,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "vote_session_status",
			Description: "Get the frames, vote counts and confirmed code of a vote session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "vote_session_clear",
			Description: "Delete a vote session. Without session_id, remove every expired session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
				},
			},
		},

		// Service
		{
			Name:        "service_status",
			Description: "List the recognition and detection backends, their availability and the request defaults.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
