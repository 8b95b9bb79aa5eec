package vote

import "math"

// RawResult is the output of one recognition round.
type RawResult struct {
	// Value is the recognized string. Empty means the round found nothing usable.
	Value string `json:"value"`

	// Confidence is the recognizer's confidence for Value (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// Found reports whether the round produced a usable value.
func (r RawResult) Found() bool {
	return r.Value != ""
}

// BBox is an axis-aligned box in pixel coordinates: [x1, y1, x2, y2].
type BBox [4]float64

// Width returns x2 - x1.
func (b BBox) Width() float64 { return b[2] - b[0] }

// Height returns y2 - y1.
func (b BBox) Height() float64 { return b[3] - b[1] }

// Area returns the box area. Inverted boxes yield a non-positive area.
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// Rounded returns the box with each coordinate rounded to the nearest integer,
// halves rounding up.
func (b BBox) Rounded() [4]int {
	var out [4]int
	for i, v := range b {
		out[i] = int(math.Floor(v + 0.5))
	}
	return out
}

// RawDetection is one candidate box returned by a detection round.
type RawDetection struct {
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
	Class      string  `json:"class"`
}

// RecognitionConsensus is the decision reached over a set of recognition rounds.
type RecognitionConsensus struct {
	// Value is the confirmed value, or empty when nothing was confirmed.
	Value string `json:"value"`

	// Candidate is the modal value whether or not it was confirmed.
	// Useful for diagnostics; empty when no round produced a value.
	Candidate string `json:"candidate,omitempty"`

	// Confidence is the mean confidence of the winning value, rounded to 4 decimals.
	Confidence float64 `json:"confidence"`

	// VoteCount is the number of rounds that produced the winning value.
	VoteCount int `json:"vote_count"`

	// TotalRounds is the number of rounds that produced output.
	TotalRounds int `json:"total_rounds"`

	// Confirmed reports whether the winner's share reached the threshold.
	Confirmed bool `json:"confirmed"`
}

// DetectionConsensus is the decision reached over a set of detection rounds.
type DetectionConsensus struct {
	// BBox is the winning cluster's centroid rounded to integers.
	BBox [4]int `json:"bbox"`

	// Confidence is the mean member confidence, rounded to 4 decimals.
	Confidence float64 `json:"confidence"`

	// Class is the class label of the cluster's first member.
	Class string `json:"class"`

	VoteCount   int `json:"vote_count"`
	TotalRounds int `json:"total_rounds"`

	// ClassVotes counts member classes in the winning cluster. Class is not
	// re-voted; this only exposes disagreement.
	ClassVotes map[string]int `json:"class_votes,omitempty"`
}
