package vote

import "math"

// Confirmed reports whether votes out of total reaches threshold.
// The comparison is inclusive: a share exactly equal to threshold confirms.
// A zero total never confirms.
func Confirmed(votes, total int, threshold float64) bool {
	if total <= 0 {
		return false
	}
	return float64(votes)/float64(total) >= threshold
}

// Share returns votes/total, or 0 when total is zero.
func Share(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(votes) / float64(total)
}

// Round4 rounds v to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
