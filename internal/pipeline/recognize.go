package pipeline

import (
	"context"
	"time"

	"github.com/ironsheep/vision-vote/internal/vote"
)

// RecognizeOptions are the parameters of one recognition request.
type RecognizeOptions struct {
	UseVote       bool
	VoteRounds    int
	VoteThreshold float64

	// Backend names a registered recognizer; empty selects the default.
	Backend string
}

// VoteInfo describes a voting run.
type VoteInfo struct {
	// TotalRounds is the number of rounds requested.
	TotalRounds int `json:"total_rounds"`

	// UsableRounds is the number of rounds that produced output. It is the
	// denominator of the threshold check.
	UsableRounds int `json:"usable_rounds"`

	FailedRounds int     `json:"failed_rounds"`
	Threshold    float64 `json:"threshold"`
	VoteCount    int     `json:"vote_count"`

	DetectionMethod string `json:"detection_method,omitempty"`
}

// RecognizeParameters echoes the effective request parameters.
type RecognizeParameters struct {
	UseVote       bool    `json:"use_vote"`
	VoteRounds    int     `json:"vote_rounds,omitempty"`
	VoteThreshold float64 `json:"vote_threshold,omitempty"`
	Backend       string  `json:"backend"`
}

// RecognizeResponse is the result of a recognition request.
type RecognizeResponse struct {
	// NumberCode is nil when nothing was read or the vote was not confirmed.
	NumberCode *string `json:"number_code"`

	Confidence float64 `json:"confidence"`
	Confirmed  bool    `json:"confirmed"`

	VoteInfo *VoteInfo `json:"vote_info,omitempty"`

	ProcessingTimeMs int64               `json:"processing_time_ms"`
	Parameters       RecognizeParameters `json:"parameters"`
}

// Recognize reads the code in the image at imagePath.
func (s *Service) Recognize(ctx context.Context, imagePath string, opts RecognizeOptions) (*RecognizeResponse, error) {
	start := time.Now()

	s.release(imagePath)
	defer s.release(imagePath)

	name, rec, err := s.recognizer(opts.Backend)
	if err != nil {
		return nil, err
	}

	if !opts.UseVote {
		res, err := s.ocrRunner.OnceRecognition(ctx, rec, imagePath)
		if err != nil {
			return nil, err
		}

		c := vote.SingleRecognition(res)
		resp := &RecognizeResponse{
			NumberCode: codePtr(c.Value),
			Confidence: c.Confidence,
			Confirmed:  false,
			Parameters: RecognizeParameters{Backend: name},
		}
		resp.ProcessingTimeMs = time.Since(start).Milliseconds()

		s.debugf("[OCR] %s single-shot: %q (%.3f) in %dms", name, c.Value, c.Confidence, resp.ProcessingTimeMs)
		return resp, nil
	}

	n, threshold := s.voteParams(opts.VoteRounds, opts.VoteThreshold)

	run, err := s.ocrRunner.RecognitionRounds(ctx, rec, imagePath, n)
	if err != nil {
		return nil, err
	}

	c := vote.Recognition(run.Results, threshold)
	resp := &RecognizeResponse{
		NumberCode: codePtr(c.Value),
		Confidence: c.Confidence,
		Confirmed:  c.Confirmed,
		VoteInfo: &VoteInfo{
			TotalRounds:  n,
			UsableRounds: c.TotalRounds,
			FailedRounds: run.Failed,
			Threshold:    threshold,
			VoteCount:    c.VoteCount,
		},
		Parameters: RecognizeParameters{
			UseVote:       true,
			VoteRounds:    n,
			VoteThreshold: threshold,
			Backend:       name,
		},
	}
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.debugf("[OCR] %s vote: candidate %q %d/%d confirmed=%v in %dms",
		name, c.Candidate, c.VoteCount, c.TotalRounds, c.Confirmed, resp.ProcessingTimeMs)
	return resp, nil
}

// voteParams normalizes the round count and threshold of a request.
func (s *Service) voteParams(n int, threshold float64) (int, float64) {
	if n < 1 {
		n = s.defaults.VoteRounds
	}
	if !inUnitRange(threshold) {
		threshold = s.defaults.VoteThreshold
	}
	return n, threshold
}

func codePtr(code string) *string {
	if code == "" {
		return nil
	}
	return &code
}
