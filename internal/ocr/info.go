package ocr

import (
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/vision-vote/internal/rounds"
)

// Info reports the linked Tesseract version.
func (r *TesseractRecognizer) Info() rounds.BackendInfo {
	return rounds.BackendInfo{
		Available: true,
		Version:   gosseract.Version(),
		Detail:    "language " + r.language(),
	}
}

// Info reports whether an external recognition program is configured.
func (r *CommandRecognizer) Info() rounds.BackendInfo {
	info := rounds.BackendInfo{Available: r.Available()}
	if r.cmd != nil {
		info.Detail = r.cmd.Script
	}
	return info
}
