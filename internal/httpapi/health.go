package httpapi

import (
	"net/http"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	code := http.StatusOK
	message := "service is healthy"

	if !h.service.Healthy() {
		code = http.StatusServiceUnavailable
		message = "default backend unavailable"
	}

	writeJson(w, code, envelope{
		Success:   code == http.StatusOK,
		Message:   message,
		Data:      h.service.Status(),
		Timestamp: timestamp(),
	})
}
