package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/vision-vote/internal/vote"
)

// mergeOverlapping folds candidates that overlap an already kept box.
//
// A candidate is merged when its intersection with a kept box exceeds half of
// the candidate's own area; the kept box takes the candidate's geometry only
// if the candidate is strictly more confident. The result is sorted by area,
// largest first.
func mergeOverlapping(candidates []vote.RawDetection) []vote.RawDetection {
	merged := make([]vote.RawDetection, 0, len(candidates))

	for _, c := range candidates {
		foundMerge := false
		for i := range merged {
			if overlapArea(c.BBox, merged[i].BBox) > c.BBox.Area()*0.5 {
				if c.Confidence > merged[i].Confidence {
					merged[i].BBox = c.BBox
					merged[i].Confidence = c.Confidence
				}
				foundMerge = true
				break
			}
		}
		if !foundMerge {
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].BBox.Area() > merged[j].BBox.Area()
	})

	return merged
}

// overlapArea returns the intersection area of two boxes, 0 when disjoint.
func overlapArea(a, b vote.BBox) float64 {
	w := math.Max(0, math.Min(a[2], b[2])-math.Max(a[0], b[0]))
	h := math.Max(0, math.Min(a[3], b[3])-math.Max(a[1], b[1]))
	return w * h
}
