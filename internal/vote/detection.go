package vote

import "math"

// MergeIoU is the overlap a detection must exceed to join a cluster.
const MergeIoU = 0.5

// IoU returns the Intersection over Union of two boxes.
//
// The result is 0 for disjoint boxes and whenever the union area is not
// positive. IoU is symmetric and IoU(a, a) is 1 for any box with positive area.
func IoU(a, b BBox) float64 {
	x1 := math.Max(a[0], b[0])
	y1 := math.Max(a[1], b[1])
	x2 := math.Min(a[2], b[2])
	y2 := math.Min(a[3], b[3])

	intersection := math.Max(0, x2-x1) * math.Max(0, y2-y1)
	union := a.Area() + b.Area() - intersection

	if union <= 0 {
		return 0
	}
	return intersection / union
}

// Cluster is a group of detections believed to be the same object.
type Cluster struct {
	// BBox is the running mean of all member boxes.
	BBox BBox `json:"bbox"`

	// Members are the merged detections in the order they joined.
	Members []RawDetection `json:"members"`
}

// add appends d and moves the centroid to the mean of all members.
func (c *Cluster) add(d RawDetection) {
	c.Members = append(c.Members, d)
	n := float64(len(c.Members))
	for i := range c.BBox {
		c.BBox[i] = (c.BBox[i]*(n-1) + d.BBox[i]) / n
	}
}

// MeanConfidence returns the average member confidence.
func (c *Cluster) MeanConfidence() float64 {
	if len(c.Members) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range c.Members {
		sum += m.Confidence
	}
	return sum / float64(len(c.Members))
}

// ClusterDetections groups detections across rounds.
//
// Rounds are visited in order, then detections within each round in order.
// Each detection joins the first existing cluster whose current centroid it
// overlaps with IoU > MergeIoU; otherwise it starts a new cluster.
func ClusterDetections(rounds [][]RawDetection) []Cluster {
	clusters := make([]Cluster, 0)

	for _, round := range rounds {
		for _, det := range round {
			matched := false
			for i := range clusters {
				if IoU(det.BBox, clusters[i].BBox) > MergeIoU {
					clusters[i].add(det)
					matched = true
					break
				}
			}
			if !matched {
				clusters = append(clusters, Cluster{
					BBox:    det.BBox,
					Members: []RawDetection{det},
				})
			}
		}
	}

	return clusters
}

// largest returns the index of the cluster with the most members.
// The first cluster reaching the maximum wins.
func largest(clusters []Cluster) int {
	best := -1
	for i := range clusters {
		if best < 0 || len(clusters[i].Members) > len(clusters[best].Members) {
			best = i
		}
	}
	return best
}

// Detections votes over detection rounds.
//
// rounds holds one slice per round that produced output; an empty slice is a
// round that saw nothing and still counts toward the denominator. The largest
// cluster is returned when len(members)/len(rounds) reaches threshold.
// Otherwise Detections returns nil rather than a low-confidence guess.
func Detections(rounds [][]RawDetection, threshold float64) *DetectionConsensus {
	if len(rounds) == 0 {
		return nil
	}

	clusters := ClusterDetections(rounds)
	i := largest(clusters)
	if i < 0 {
		return nil
	}
	best := clusters[i]

	if !Confirmed(len(best.Members), len(rounds), threshold) {
		return nil
	}

	classes := make(map[string]int)
	for _, m := range best.Members {
		classes[m.Class]++
	}

	return &DetectionConsensus{
		BBox:        best.BBox.Rounded(),
		Confidence:  Round4(best.MeanConfidence()),
		Class:       best.Members[0].Class,
		VoteCount:   len(best.Members),
		TotalRounds: len(rounds),
		ClassVotes:  classes,
	}
}

// SingleDetections returns one round's detections unchanged, never nil.
func SingleDetections(frame []RawDetection) []RawDetection {
	out := make([]RawDetection, len(frame))
	copy(out, frame)
	return out
}
