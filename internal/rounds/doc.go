// Package rounds executes a black-box recognizer or detector repeatedly
// against one image and collects the per-round raw results for voting.
//
// Rounds run strictly one after another: each backend call is an exclusive,
// blocking invocation (often an external process). A round that fails is
// logged and skipped. It is not recorded as a null or empty round, so the
// number of collected rounds may be smaller than the number requested and the
// vote threshold is applied to "rounds that produced output".
//
// Raw results are validated here, at the boundary, so that package vote only
// ever sees well-formed values. A recognition result with an invalid
// confidence fails its round; a detection with a malformed box is dropped from
// its round.
package rounds
