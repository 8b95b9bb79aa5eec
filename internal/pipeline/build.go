package pipeline

import (
	"github.com/ironsheep/vision-vote/internal/config"
	"github.com/ironsheep/vision-vote/internal/detection"
	"github.com/ironsheep/vision-vote/internal/imaging"
	"github.com/ironsheep/vision-vote/internal/ocr"
	"github.com/ironsheep/vision-vote/internal/script"
)

// FromConfig builds a service with every known backend registered.
// Images decoded by the in-process backends are shared through cache.
func FromConfig(cfg *config.Config, cache *imaging.ImageCache) *Service {
	s := NewService(Defaults{
		VoteRounds:    cfg.VoteRounds,
		VoteThreshold: cfg.VoteThreshold,
		Confidence:    cfg.Confidence,
		Recognizer:    cfg.Recognizer,
		Detector:      cfg.Detector,
	})
	s.SetImageCache(cache)

	tess := ocr.NewTesseractRecognizer(cache)
	tess.Language = cfg.Language
	s.RegisterRecognizer(config.RecognizerTesseract, tess)

	easy := ocr.NewCommandRecognizer(&script.Command{
		Interpreter: cfg.PythonPath,
		Script:      cfg.RecognizerScript,
		Timeout:     cfg.Timeout,
		Tag:         "[OCR]",
	})
	easy.UseGPU = cfg.UseGPU
	s.RegisterRecognizer(config.RecognizerCommand, easy)

	s.RegisterDetector(config.DetectorContour, detection.NewTagDetector(cache))
	s.RegisterDetector(config.DetectorCommand, detection.NewCommandDetector(&script.Command{
		Interpreter: cfg.PythonPath,
		Script:      cfg.DetectorScript,
		Timeout:     cfg.Timeout,
		Tag:         "[DETECT]",
	}))

	return s
}
