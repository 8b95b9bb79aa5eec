package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/vision-vote/internal/imaging"
)

var (
	errMissingImage = errors.New("image file is required")
	errNotImage     = errors.New("uploaded file is not an image")
	errTooLarge     = errors.New("image exceeds 10MB")
)

// stageUpload parses the multipart form and stages the "image" field.
// The caller must Close the returned file.
func (h *Handler) stageUpload(w http.ResponseWriter, r *http.Request) (*imaging.Staged, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError

		if errors.As(err, &tooLarge) {
			return nil, errTooLarge
		}

		return nil, fmt.Errorf("%w: %v", errMissingImage, err)
	}

	file, header, err := r.FormFile("image")

	if err != nil {
		return nil, errMissingImage
	}

	defer file.Close()

	if header.Size > MaxUploadSize {
		return nil, errTooLarge
	}

	body, err := sniffImage(file, header)

	if err != nil {
		return nil, err
	}

	return imaging.Stage(h.tempDir, body, filepath.Ext(header.Filename), h.cache)
}

// sniffImage accepts a part whose declared type is image/*, or whose
// content looks like an image when no useful type was declared.
func sniffImage(file multipart.File, header *multipart.FileHeader) (io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)

	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return nil, errNotImage
		}
		return nil, err
	}

	head = head[:n]

	contentType := header.Header.Get("Content-Type")

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(head)
	}

	if !strings.HasPrefix(contentType, "image/") {
		return nil, errNotImage
	}

	return io.MultiReader(bytes.NewReader(head), file), nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, errTooLarge.Error(), nil)
	case errors.Is(err, errMissingImage):
		writeError(w, http.StatusBadRequest, errMissingImage.Error(), nil)
	case errors.Is(err, errNotImage):
		writeError(w, http.StatusBadRequest, errNotImage.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "failed to store image", err)
	}
}

func formBool(r *http.Request, key string) bool {
	return r.FormValue(key) == "true"
}

// formInt returns 0 for a missing or malformed value so that the service
// default applies.
func formInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.FormValue(key))

	if err != nil {
		return 0
	}

	return v
}

func formFloat(r *http.Request, key string) float64 {
	v, err := strconv.ParseFloat(r.FormValue(key), 64)

	if err != nil {
		return 0
	}

	return v
}
