package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ironsheep/vision-vote/internal/imaging"
	"github.com/ironsheep/vision-vote/internal/pipeline"
	"github.com/ironsheep/vision-vote/internal/session"
)

// MaxUploadSize bounds an uploaded image.
const MaxUploadSize = 10 << 20

// Handler serves the HTTP API.
type Handler struct {
	service  *pipeline.Service
	sessions *session.Manager
	cache    *imaging.ImageCache

	tempDir string
}

// New creates a handler that stages uploads in tempDir.
func New(service *pipeline.Service, sessions *session.Manager, cache *imaging.ImageCache, tempDir string) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		cache:    cache,

		tempDir: tempDir,
	}
}

// Routes returns the complete router with CORS and panic recovery.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/api", h.Attach)

	return r
}

// Attach registers the API routes on r.
func (h *Handler) Attach(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Route("/ocr", func(r chi.Router) {
		r.Post("/recognize", h.handleRecognize)
		r.Get("/recognize", h.handleRecognizeStatus)
		r.Delete("/recognize", h.handleRecognizeClear)

		r.Post("/sessions", h.handleSessionCreate)
		r.Post("/sessions/{id}/frames", h.handleSessionFrame)
	})

	r.Route("/yolo", func(r chi.Router) {
		r.Post("/detect", h.handleDetect)
		r.Get("/detect", h.handleDetectStatus)
	})
}

// envelope is the body of every response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
}

func writeJson(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJson(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, code int, message string, err error) {
	resp := envelope{Error: message}

	if err != nil {
		resp.Details = err.Error()

		if code >= 500 {
			log.Printf("%s: %v", message, err)
		}
	}

	writeJson(w, code, resp)
}

// writeServiceError maps a pipeline or session error to a status code.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrUnknownBackend):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found", err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
