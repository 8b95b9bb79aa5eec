package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ironsheep/vision-vote/internal/pipeline"
	"github.com/ironsheep/vision-vote/internal/rounds"
	"github.com/ironsheep/vision-vote/internal/session"
	"github.com/ironsheep/vision-vote/internal/vote"
)

// handleRecognize reads the code on an uploaded image.
func (h *Handler) handleRecognize(w http.ResponseWriter, r *http.Request) {
	staged, err := h.stageUpload(w, r)

	if err != nil {
		writeUploadError(w, err)
		return
	}

	defer staged.Close()

	opts := pipeline.RecognizeOptions{
		UseVote:       formBool(r, "use_vote"),
		VoteRounds:    formInt(r, "vote_rounds"),
		VoteThreshold: formFloat(r, "vote_threshold"),
		Backend:       r.FormValue("backend"),
	}

	resp, err := h.service.Recognize(r.Context(), staged.Path, opts)

	if err != nil {
		writeServiceError(w, "OCR recognition failed", err)
		return
	}

	writeData(w, resp)
}

// handleRecognizeStatus returns a session's vote state when session_id is
// given, and the service description otherwise.
func (h *Handler) handleRecognizeStatus(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("session_id"); id != "" {
		status, err := h.sessions.Status(id)

		if err != nil {
			writeServiceError(w, "failed to read session", err)
			return
		}

		writeData(w, status)
		return
	}

	st := h.service.Status()

	writeData(w, map[string]any{
		"service":           "Number Code Recognition API",
		"status":            readiness(h.service.Healthy()),
		"purpose":           "Recognize 3-digit number codes from images",
		"engines":           st.Recognizers,
		"supported_formats": []string{"image/jpeg", "image/png", "image/webp", "image/bmp"},
		"max_image_size":    "10MB",
		"active_sessions":   h.sessions.Len(),
	})
}

// handleRecognizeClear deletes one session, or sweeps expired sessions when
// no session_id is given.
func (h *Handler) handleRecognizeClear(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("session_id"); id != "" {
		if err := h.sessions.Delete(id); err != nil {
			writeServiceError(w, "failed to clear session", err)
			return
		}

		writeJson(w, http.StatusOK, envelope{
			Success: true,
			Message: "vote session cleared",
			Data:    map[string]string{"session_id": id},
		})
		return
	}

	n := h.sessions.Sweep()

	writeJson(w, http.StatusOK, envelope{
		Success: true,
		Message: fmt.Sprintf("cleared %d expired sessions", n),
		Data:    map[string]int{"cleared": n},
	})
}

type sessionCreateRequest struct {
	WindowSize int     `json:"window_size"`
	Threshold  float64 `json:"threshold"`
}

func (h *Handler) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	status := h.sessions.Create(req.WindowSize, req.Threshold)

	writeJson(w, http.StatusCreated, envelope{Success: true, Data: status})
}

type frameRequest struct {
	NumberCode *string `json:"number_code"`
	Confidence float64 `json:"confidence"`
}

type frameResponse struct {
	Recognition *pipeline.RecognizeResponse `json:"recognition,omitempty"`

	*session.FrameResult
}

// handleSessionFrame adds one frame to a session. A multipart request is
// recognized first; a JSON request carries an already recognized code.
func (h *Handler) handleSessionFrame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.sessions.Status(id); err != nil {
		writeServiceError(w, "failed to add frame", err)
		return
	}

	var (
		code string
		conf float64
		resp frameResponse
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		rec, err := h.recognizeFrame(w, r)

		if err != nil {
			return
		}

		if rec.NumberCode != nil {
			code = *rec.NumberCode
		}
		conf = rec.Confidence
		resp.Recognition = rec
	} else {
		var req frameRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}

		if req.NumberCode != nil {
			code = *req.NumberCode
		}
		conf = req.Confidence

		if err := rounds.ValidateResult(vote.RawResult{Value: code, Confidence: conf}); err != nil {
			writeError(w, http.StatusBadRequest, "invalid frame", err)
			return
		}
	}

	result, err := h.sessions.AddFrame(id, code, conf)

	if err != nil {
		writeServiceError(w, "failed to add frame", err)
		return
	}

	resp.FrameResult = result
	writeData(w, resp)
}

// recognizeFrame runs one single-shot recognition on an uploaded frame and
// writes the error response itself when it fails.
func (h *Handler) recognizeFrame(w http.ResponseWriter, r *http.Request) (*pipeline.RecognizeResponse, error) {
	staged, err := h.stageUpload(w, r)

	if err != nil {
		writeUploadError(w, err)
		return nil, err
	}

	defer staged.Close()

	rec, err := h.service.Recognize(r.Context(), staged.Path, pipeline.RecognizeOptions{
		Backend: r.FormValue("backend"),
	})

	if err != nil {
		writeServiceError(w, "OCR recognition failed", err)
		return nil, err
	}

	return rec, nil
}

func readiness(healthy bool) string {
	if healthy {
		return "ready"
	}
	return "degraded"
}
