package httpapi

import (
	"net/http"

	"github.com/ironsheep/vision-vote/internal/pipeline"
)

// handleDetect locates number tags on an uploaded image.
func (h *Handler) handleDetect(w http.ResponseWriter, r *http.Request) {
	staged, err := h.stageUpload(w, r)

	if err != nil {
		writeUploadError(w, err)
		return
	}

	defer staged.Close()

	opts := pipeline.DetectOptions{
		Confidence:    formFloat(r, "confidence"),
		UseVote:       formBool(r, "use_vote"),
		VoteRounds:    formInt(r, "vote_rounds"),
		VoteThreshold: formFloat(r, "vote_threshold"),
		Backend:       r.FormValue("backend"),
	}

	resp, err := h.service.Detect(r.Context(), staged.Path, opts)

	if err != nil {
		writeServiceError(w, "detection failed", err)
		return
	}

	writeData(w, resp)
}

func (h *Handler) handleDetectStatus(w http.ResponseWriter, r *http.Request) {
	st := h.service.Status()

	writeData(w, map[string]any{
		"service":           "Number Tag Detection API",
		"status":            readiness(h.service.Healthy()),
		"purpose":           "Detect white number tags with dark print",
		"detectors":         st.Detectors,
		"supported_formats": []string{"image/jpeg", "image/png", "image/webp", "image/bmp"},
		"max_image_size":    "10MB",
	})
}
