package detection

import (
	"context"
	"strconv"

	"github.com/ironsheep/vision-vote/internal/rounds"
	"github.com/ironsheep/vision-vote/internal/script"
)

// CommandDetector delegates detection to an external program.
//
// The program is invoked as `<interpreter> <script> <image> <confidence>` and
// must print one JSON document:
//
//	{"detections": [{"bbox": [x1, y1, x2, y2], "confidence": 0.9, "class": "person"}],
//	 "image_width": 640, "image_height": 480, "detection_method": "yolo"}
//
// or {"error": "..."} on failure.
type CommandDetector struct {
	cmd *script.Command
}

// NewCommandDetector wraps cmd as a rounds.Detector.
func NewCommandDetector(cmd *script.Command) *CommandDetector {
	return &CommandDetector{cmd: cmd}
}

// Detect runs the program once.
func (d *CommandDetector) Detect(ctx context.Context, imagePath string, minConfidence float64) (*rounds.Frame, error) {
	var frame rounds.Frame
	conf := strconv.FormatFloat(minConfidence, 'f', -1, 64)
	if err := d.cmd.Run(ctx, &frame, imagePath, conf); err != nil {
		return nil, err
	}
	return &frame, nil
}

// Available reports whether a program is configured.
func (d *CommandDetector) Available() bool {
	return d.cmd.Configured()
}

// Info reports the configured program.
func (d *CommandDetector) Info() rounds.BackendInfo {
	info := rounds.BackendInfo{Available: d.Available()}
	if d.cmd != nil {
		info.Detail = d.cmd.Script
	}
	return info
}
