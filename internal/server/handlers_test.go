package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name, args string) *MCPResponse {
	t.Helper()

	params := `{"name":"` + name + `"`
	if args != "" {
		params += `,"arguments":` + args
	}
	params += `}`

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(params),
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// toolResult decodes the text content of a successful tools/call response.
func toolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}

	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
}

func TestHandleToolsCall_Recognize(t *testing.T) {
	s, rec := newTestServer()

	var out struct {
		NumberCode *string `json:"number_code"`
		Confirmed  bool    `json:"confirmed"`
		VoteInfo   *struct {
			TotalRounds int `json:"total_rounds"`
			VoteCount   int `json:"vote_count"`
		} `json:"vote_info"`
	}
	toolResult(t, callTool(t, s, "ocr_recognize", `{"path":"/tmp/frame.jpg","use_vote":true,"vote_rounds":3}`), &out)

	if out.NumberCode == nil || *out.NumberCode != "042" {
		t.Errorf("number_code: got %v, want 042", out.NumberCode)
	}
	if !out.Confirmed {
		t.Error("3 agreeing rounds should confirm")
	}
	if out.VoteInfo == nil || out.VoteInfo.TotalRounds != 3 || out.VoteInfo.VoteCount != 3 {
		t.Errorf("vote_info: got %+v", out.VoteInfo)
	}
	if rec.calls != 3 {
		t.Errorf("recognizer calls: got %d, want 3", rec.calls)
	}
}

func TestHandleToolsCall_RecognizeFailure(t *testing.T) {
	s, rec := newTestServer()
	rec.err = errors.New("engine crashed")

	resp := callTool(t, s, "ocr_recognize", `{"path":"/tmp/frame.jpg"}`)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected -32000 error, got %+v", resp.Error)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "engine crashed") {
		t.Errorf("error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_Detect(t *testing.T) {
	s, _ := newTestServer()

	var out struct {
		Detections []struct {
			BBox  [4]float64 `json:"bbox"`
			Class string     `json:"class"`
		} `json:"detections"`
		DetectionMethod string `json:"detection_method"`
		ImageInfo       struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"image_info"`
	}
	toolResult(t, callTool(t, s, "tag_detect", `{"path":"/tmp/frame.jpg","confidence":0.6}`), &out)

	if len(out.Detections) != 1 || out.Detections[0].Class != "number_tag" {
		t.Fatalf("detections: got %+v", out.Detections)
	}
	if out.Detections[0].BBox != [4]float64{10, 20, 110, 70} {
		t.Errorf("bbox: got %v", out.Detections[0].BBox)
	}
	if out.DetectionMethod != "contour" {
		t.Errorf("detection_method: got %s", out.DetectionMethod)
	}
	if out.ImageInfo.Width != 640 || out.ImageInfo.Height != 480 {
		t.Errorf("image_info: got %+v", out.ImageInfo)
	}
}

func TestHandleToolsCall_InvalidArguments(t *testing.T) {
	s, _ := newTestServer()

	tests := []struct {
		name string
		tool string
		args string
	}{
		{"recognize missing path", "ocr_recognize", `{}`},
		{"detect missing path", "tag_detect", ``},
		{"wrong type", "ocr_recognize", `{"path": 12}`},
		{"add frame missing session", "vote_session_add_frame", `{"number_code":"042"}`},
		{"status missing session", "vote_session_status", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil || resp.Error.Code != -32602 {
				t.Errorf("expected -32602 error, got %+v", resp.Error)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s, _ := newTestServer()

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602 error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s, _ := newTestServer()

	resp := callTool(t, s, "image_crop", `{}`)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("expected -32000 error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_VoteSession(t *testing.T) {
	s, rec := newTestServer()

	var created struct {
		SessionID  string `json:"session_id"`
		WindowSize int    `json:"window_size"`
	}
	toolResult(t, callTool(t, s, "vote_session_create", `{"window_size":3,"threshold":0.6}`), &created)
	if created.SessionID == "" || created.WindowSize != 3 {
		t.Fatalf("unexpected session: %+v", created)
	}

	type frameOut struct {
		Recognition *struct {
			NumberCode *string `json:"number_code"`
		} `json:"recognition"`
		Confirmation *struct {
			Code  string `json:"code"`
			Votes int    `json:"votes"`
		} `json:"confirmation"`
	}

	frames := []string{
		`{"session_id":"` + created.SessionID + `","number_code":"042","confidence":0.9}`,
		`{"session_id":"` + created.SessionID + `","path":"/tmp/frame.jpg"}`,
		`{"session_id":"` + created.SessionID + `","number_code":"043","confidence":0.7}`,
	}

	var last frameOut
	for i, args := range frames {
		last = frameOut{}
		toolResult(t, callTool(t, s, "vote_session_add_frame", args), &last)

		if i == 1 && (last.Recognition == nil || *last.Recognition.NumberCode != "042") {
			t.Errorf("frame %d should carry the recognition result", i)
		}
	}
	if rec.calls != 1 {
		t.Errorf("recognizer calls: got %d, want 1", rec.calls)
	}
	if last.Confirmation == nil || last.Confirmation.Code != "042" || last.Confirmation.Votes != 2 {
		t.Errorf("confirmation: got %+v", last.Confirmation)
	}

	var status struct {
		TotalFrames int     `json:"total_frames"`
		Confirmed   bool    `json:"confirmed"`
		NumberCode  *string `json:"number_code"`
	}
	toolResult(t, callTool(t, s, "vote_session_status", `{"session_id":"`+created.SessionID+`"}`), &status)
	if status.TotalFrames != 3 || !status.Confirmed || status.NumberCode == nil || *status.NumberCode != "042" {
		t.Errorf("status: got %+v", status)
	}

	var cleared map[string]interface{}
	toolResult(t, callTool(t, s, "vote_session_clear", `{"session_id":"`+created.SessionID+`"}`), &cleared)
	if cleared["cleared"] != true {
		t.Errorf("clear: got %v", cleared)
	}

	resp := callTool(t, s, "vote_session_status", `{"session_id":"`+created.SessionID+`"}`)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("status after clear: expected -32000 error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_VoteSessionRejectsBadConfidence(t *testing.T) {
	s, _ := newTestServer()

	var created struct {
		SessionID string `json:"session_id"`
	}
	toolResult(t, callTool(t, s, "vote_session_create", `{"window_size":3}`), &created)

	for _, conf := range []string{"95", "-0.1"} {
		args := `{"session_id":"` + created.SessionID + `","number_code":"042","confidence":` + conf + `}`
		resp := callTool(t, s, "vote_session_add_frame", args)
		if resp.Error == nil || resp.Error.Code != -32602 {
			t.Errorf("confidence %s: expected -32602 error, got %+v", conf, resp.Error)
		}
	}

	var status struct {
		TotalFrames int `json:"total_frames"`
	}
	toolResult(t, callTool(t, s, "vote_session_status", `{"session_id":"`+created.SessionID+`"}`), &status)
	if status.TotalFrames != 0 {
		t.Errorf("rejected frames were counted: total_frames = %d", status.TotalFrames)
	}
}

func TestHandleToolsCall_VoteSessionSweep(t *testing.T) {
	s, _ := newTestServer()

	var out map[string]interface{}
	toolResult(t, callTool(t, s, "vote_session_clear", ``), &out)
	if out["expired_cleared"] != float64(0) {
		t.Errorf("expired_cleared: got %v", out["expired_cleared"])
	}
}

func TestHandleToolsCall_ServiceStatus(t *testing.T) {
	s, _ := newTestServer()

	var out struct {
		Recognizers []struct {
			Name      string `json:"name"`
			Available bool   `json:"available"`
			Default   bool   `json:"default"`
		} `json:"recognizers"`
		Detectors []struct {
			Name string `json:"name"`
		} `json:"detectors"`
	}
	toolResult(t, callTool(t, s, "service_status", ``), &out)

	if len(out.Recognizers) != 1 || out.Recognizers[0].Name != "fake" || !out.Recognizers[0].Default {
		t.Errorf("recognizers: got %+v", out.Recognizers)
	}
	if len(out.Detectors) != 1 {
		t.Errorf("detectors: got %+v", out.Detectors)
	}
}
