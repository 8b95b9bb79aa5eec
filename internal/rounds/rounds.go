package rounds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/ironsheep/vision-vote/internal/vote"
)

// ErrNoFrame is returned when a detector reports success without a frame.
var ErrNoFrame = errors.New("detector returned no frame")

// Recognizer is a black box that reads a code from an image.
type Recognizer interface {
	// Recognize runs one recognition pass. An empty Value with a nil error
	// means the pass completed but found nothing.
	Recognize(ctx context.Context, imagePath string) (vote.RawResult, error)
}

// Frame is the output of one detection pass.
type Frame struct {
	Detections  []vote.RawDetection `json:"detections"`
	ImageWidth  int                 `json:"image_width"`
	ImageHeight int                 `json:"image_height"`

	// Method names the technique the backend used, e.g. "yolo" or "contour".
	Method string `json:"detection_method"`
}

// Detector is a black box that locates objects in an image.
type Detector interface {
	Detect(ctx context.Context, imagePath string, minConfidence float64) (*Frame, error)
}

// RecognitionRun holds the rounds collected by RecognitionRounds.
type RecognitionRun struct {
	Results   []vote.RawResult
	Requested int
	Failed    int
}

// DetectionRun holds the rounds collected by DetectionRounds.
type DetectionRun struct {
	Rounds    [][]vote.RawDetection
	Requested int
	Failed    int

	// Method is the detection method reported by the first successful round.
	Method string

	ImageWidth  int
	ImageHeight int

	// Dropped counts detections discarded by validation.
	Dropped int
}

// Runner executes rounds sequentially.
type Runner struct {
	// Tag prefixes log lines, e.g. "[OCR]".
	Tag string

	// Logf receives round failures. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewRunner returns a Runner that logs with the given tag.
func NewRunner(tag string) *Runner {
	return &Runner{Tag: tag}
}

func (r *Runner) logf(format string, args ...any) {
	logf := r.Logf
	if logf == nil {
		logf = log.Printf
	}
	if r.Tag != "" {
		format = r.Tag + " " + format
	}
	logf(format, args...)
}

// RecognitionRounds invokes rec n times in order.
//
// Failed or invalid rounds are logged and left out of the result. If ctx is
// cancelled the rounds collected so far are returned together with ctx.Err().
func (r *Runner) RecognitionRounds(ctx context.Context, rec Recognizer, imagePath string, n int) (*RecognitionRun, error) {
	run := &RecognitionRun{
		Results:   make([]vote.RawResult, 0, n),
		Requested: n,
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		res, err := rec.Recognize(ctx, imagePath)
		if err == nil {
			err = ValidateResult(res)
		}
		if err != nil {
			run.Failed++
			r.logf("round %d failed: %v", i+1, err)
			continue
		}

		run.Results = append(run.Results, res)
	}

	return run, nil
}

// DetectionRounds invokes det n times in order.
//
// A round that returns no boxes is kept as an empty round. Failed rounds are
// logged and left out. Individual malformed boxes are dropped and counted.
func (r *Runner) DetectionRounds(ctx context.Context, det Detector, imagePath string, n int, minConfidence float64) (*DetectionRun, error) {
	run := &DetectionRun{
		Rounds:    make([][]vote.RawDetection, 0, n),
		Requested: n,
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		frame, err := det.Detect(ctx, imagePath, minConfidence)
		if err == nil && frame == nil {
			err = ErrNoFrame
		}
		if err != nil {
			run.Failed++
			r.logf("round %d failed: %v", i+1, err)
			continue
		}

		valid, dropped := FilterDetections(frame.Detections)
		if dropped > 0 {
			r.logf("round %d: dropped %d malformed detections", i+1, dropped)
		}
		run.Dropped += dropped

		if len(run.Rounds) == 0 {
			run.Method = frame.Method
			run.ImageWidth = frame.ImageWidth
			run.ImageHeight = frame.ImageHeight
		}
		run.Rounds = append(run.Rounds, valid)
	}

	return run, nil
}

// OnceRecognition runs a single recognition round and surfaces its error.
func (r *Runner) OnceRecognition(ctx context.Context, rec Recognizer, imagePath string) (vote.RawResult, error) {
	res, err := rec.Recognize(ctx, imagePath)
	if err != nil {
		return vote.RawResult{}, err
	}
	if err := ValidateResult(res); err != nil {
		return vote.RawResult{}, err
	}
	return res, nil
}

// OnceDetection runs a single detection round and surfaces its error.
// Malformed boxes are dropped as in DetectionRounds.
func (r *Runner) OnceDetection(ctx context.Context, det Detector, imagePath string, minConfidence float64) (*Frame, error) {
	frame, err := det.Detect(ctx, imagePath, minConfidence)
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, ErrNoFrame
	}

	valid, dropped := FilterDetections(frame.Detections)
	if dropped > 0 {
		r.logf("dropped %d malformed detections", dropped)
	}

	out := *frame
	out.Detections = valid
	return &out, nil
}

// ValidateResult checks a recognition result's shape.
func ValidateResult(res vote.RawResult) error {
	return validateConfidence(res.Confidence)
}

// ValidateDetection checks one detection's shape.
func ValidateDetection(d vote.RawDetection) error {
	for i, v := range d.BBox {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bbox[%d] is not finite", i)
		}
	}
	if d.BBox[2] < d.BBox[0] || d.BBox[3] < d.BBox[1] {
		return fmt.Errorf("bbox %v is inverted", d.BBox)
	}
	return validateConfidence(d.Confidence)
}

// FilterDetections returns the valid detections and how many were dropped.
func FilterDetections(dets []vote.RawDetection) ([]vote.RawDetection, int) {
	valid := make([]vote.RawDetection, 0, len(dets))
	for _, d := range dets {
		if ValidateDetection(d) != nil {
			continue
		}
		valid = append(valid, d)
	}
	return valid, len(dets) - len(valid)
}

func validateConfidence(c float64) error {
	if math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", c)
	}
	return nil
}

// BackendInfo describes a backend for status reports.
type BackendInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Describer is implemented by backends that can report their status.
// Backends that do not implement it are reported as available.
type Describer interface {
	Info() BackendInfo
}
