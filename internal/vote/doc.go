// Package vote reconciles the results of repeated black-box vision calls into
// a single consensus decision.
//
// A recognizer or detector is invoked several times ("rounds") against the same
// image. Individual rounds disagree: some find nothing, some misread a digit,
// some place a box a few pixels off. This package turns the collected rounds
// into one answer and decides whether that answer is trustworthy enough to
// report.
//
// # Recognition Voting
//
// Recognition rounds produce free-form strings (for example a three digit tag
// code). Recognition tallies identical strings, picks the value seen in the most
// rounds and confirms it only when its vote share reaches the threshold:
//
//	share = winner.Count / len(results)
//
// When two values share the highest count, the one with the higher mean
// confidence wins. Unconfirmed results keep their statistics but withhold the
// value.
//
// # Detection Voting
//
// Detection rounds produce zero or more bounding boxes each. Boxes are grouped
// into clusters by Intersection over Union against each cluster's running
// centroid (IoU strictly greater than 0.5 merges). The cluster with the most
// members wins and is reported only when its share of the supplied rounds
// reaches the threshold.
//
// Clustering is order dependent: centroids move as members are merged, so a
// borderline box may land in a different cluster if rounds arrive in a
// different order. Callers must supply rounds in the order they executed.
//
// # Guarantees
//
// Every function in this package is pure. Nothing is shared between calls, no
// I/O happens, and no error is ever returned: empty or all-null input yields a
// deterministic unconfirmed result.
package vote
