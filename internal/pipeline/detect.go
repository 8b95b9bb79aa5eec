package pipeline

import (
	"context"
	"time"

	"github.com/ironsheep/vision-vote/internal/imaging"
	"github.com/ironsheep/vision-vote/internal/vote"
)

// unknownMethod is reported when no round said how it detected.
const unknownMethod = "unknown"

// DetectOptions are the parameters of one detection request.
type DetectOptions struct {
	// Confidence is the detector's minimum confidence.
	Confidence float64

	UseVote       bool
	VoteRounds    int
	VoteThreshold float64

	// Backend names a registered detector; empty selects the default.
	Backend string
}

// Detection is one box in a detection response. Consensus boxes also carry
// their vote counts.
type Detection struct {
	BBox       vote.BBox `json:"bbox"`
	Confidence float64   `json:"confidence"`
	Class      string    `json:"class"`

	VoteCount   int            `json:"vote_count,omitempty"`
	TotalRounds int            `json:"total_rounds,omitempty"`
	ClassVotes  map[string]int `json:"class_votes,omitempty"`
}

// ImageInfo is the size of the analyzed image.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectParameters echoes the effective request parameters.
type DetectParameters struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	UseVote             bool    `json:"use_vote"`
	VoteRounds          int     `json:"vote_rounds,omitempty"`
	VoteThreshold       float64 `json:"vote_threshold,omitempty"`
	Backend             string  `json:"backend"`
}

// DetectResponse is the result of a detection request.
//
// In voting mode Detections holds the single consensus box, or is empty when
// nothing was confirmed. In single-shot mode it holds every box of the round.
type DetectResponse struct {
	Detections []Detection `json:"detections"`

	// DetectionMethod is reported in single-shot mode; voting mode reports it
	// in VoteInfo.
	DetectionMethod string `json:"detection_method,omitempty"`

	VoteInfo  *VoteInfo `json:"vote_info,omitempty"`
	ImageInfo ImageInfo `json:"image_info"`

	ProcessingTimeMs int64            `json:"processing_time_ms"`
	Parameters       DetectParameters `json:"parameters"`
}

// Detect locates tags or objects in the image at imagePath.
func (s *Service) Detect(ctx context.Context, imagePath string, opts DetectOptions) (*DetectResponse, error) {
	start := time.Now()

	s.release(imagePath)
	defer s.release(imagePath)

	name, det, err := s.detector(opts.Backend)
	if err != nil {
		return nil, err
	}

	conf := opts.Confidence
	if !inUnitRange(conf) {
		conf = s.defaults.Confidence
	}

	if !opts.UseVote {
		frame, err := s.detectRunner.OnceDetection(ctx, det, imagePath, conf)
		if err != nil {
			return nil, err
		}

		raw := vote.SingleDetections(frame.Detections)
		dets := make([]Detection, len(raw))
		for i, d := range raw {
			dets[i] = Detection{BBox: d.BBox, Confidence: d.Confidence, Class: d.Class}
		}

		resp := &DetectResponse{
			Detections:      dets,
			DetectionMethod: methodOrUnknown(frame.Method),
			ImageInfo:       s.imageInfo(imagePath, frame.ImageWidth, frame.ImageHeight),
			Parameters:      DetectParameters{ConfidenceThreshold: conf, Backend: name},
		}
		resp.ProcessingTimeMs = time.Since(start).Milliseconds()

		s.debugf("[DETECT] %s single-shot: %d boxes in %dms", name, len(dets), resp.ProcessingTimeMs)
		return resp, nil
	}

	n, threshold := s.voteParams(opts.VoteRounds, opts.VoteThreshold)

	run, err := s.detectRunner.DetectionRounds(ctx, det, imagePath, n, conf)
	if err != nil {
		return nil, err
	}

	consensus := vote.Detections(run.Rounds, threshold)

	dets := []Detection{}
	voteCount := 0
	if consensus != nil {
		voteCount = consensus.VoteCount
		dets = append(dets, Detection{
			BBox:        intBox(consensus.BBox),
			Confidence:  consensus.Confidence,
			Class:       consensus.Class,
			VoteCount:   consensus.VoteCount,
			TotalRounds: consensus.TotalRounds,
			ClassVotes:  consensus.ClassVotes,
		})
	}

	resp := &DetectResponse{
		Detections: dets,
		VoteInfo: &VoteInfo{
			TotalRounds:     n,
			UsableRounds:    len(run.Rounds),
			FailedRounds:    run.Failed,
			Threshold:       threshold,
			VoteCount:       voteCount,
			DetectionMethod: methodOrUnknown(run.Method),
		},
		ImageInfo: s.imageInfo(imagePath, run.ImageWidth, run.ImageHeight),
		Parameters: DetectParameters{
			ConfidenceThreshold: conf,
			UseVote:             true,
			VoteRounds:          n,
			VoteThreshold:       threshold,
			Backend:             name,
		},
	}
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.debugf("[DETECT] %s vote: %d/%d usable rounds, %d votes in %dms",
		name, len(run.Rounds), n, voteCount, resp.ProcessingTimeMs)
	return resp, nil
}

// imageInfo prefers the size reported by the backend and falls back to the
// image header.
func (s *Service) imageInfo(path string, width, height int) ImageInfo {
	if width > 0 && height > 0 {
		return ImageInfo{Width: width, Height: height}
	}
	size, err := imaging.Dimensions(path)
	if err != nil {
		s.debugf("[DETECT] image size unavailable: %v", err)
		return ImageInfo{}
	}
	return ImageInfo{Width: size.Width, Height: size.Height}
}

func intBox(b [4]int) vote.BBox {
	return vote.BBox{float64(b[0]), float64(b[1]), float64(b[2]), float64(b[3])}
}

func methodOrUnknown(m string) string {
	if m == "" {
		return unknownMethod
	}
	return m
}
