package ocr

import (
	"context"
	"strconv"

	"github.com/ironsheep/vision-vote/internal/script"
	"github.com/ironsheep/vision-vote/internal/vote"
)

// CommandRecognizer delegates recognition to an external program.
//
// The program is invoked as `<interpreter> <script> <image> <use-gpu>` and
// must print {"number_code": "042", "confidence": 0.93}, with a null
// number_code when nothing was read, or {"error": "..."} on failure.
type CommandRecognizer struct {
	// UseGPU is passed through to the program as "true" or "false".
	UseGPU bool

	cmd *script.Command
}

// NewCommandRecognizer wraps cmd as a rounds.Recognizer.
func NewCommandRecognizer(cmd *script.Command) *CommandRecognizer {
	return &CommandRecognizer{cmd: cmd}
}

type commandOutput struct {
	NumberCode *string `json:"number_code"`
	Confidence float64 `json:"confidence"`
}

// Recognize runs the program once.
func (r *CommandRecognizer) Recognize(ctx context.Context, imagePath string) (vote.RawResult, error) {
	var out commandOutput
	if err := r.cmd.Run(ctx, &out, imagePath, strconv.FormatBool(r.UseGPU)); err != nil {
		return vote.RawResult{}, err
	}

	if out.NumberCode == nil || *out.NumberCode == "" {
		return vote.RawResult{Confidence: out.Confidence}, nil
	}
	return vote.RawResult{Value: *out.NumberCode, Confidence: out.Confidence}, nil
}

// Available reports whether a program is configured.
func (r *CommandRecognizer) Available() bool {
	return r.cmd.Configured()
}
