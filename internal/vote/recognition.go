package vote

// TallyEntry accumulates the rounds that produced one distinct value.
type TallyEntry struct {
	Value           string  `json:"value"`
	Count           int     `json:"count"`
	TotalConfidence float64 `json:"total_confidence"`
}

// MeanConfidence returns TotalConfidence / Count.
func (e TallyEntry) MeanConfidence() float64 {
	if e.Count == 0 {
		return 0
	}
	return e.TotalConfidence / float64(e.Count)
}

// Tally counts identical recognition values in first-seen order.
//
// The zero value is ready to use.
type Tally struct {
	entries []TallyEntry
	index   map[string]int
}

// NewTally builds a tally over results, skipping rounds that found nothing.
func NewTally(results []RawResult) *Tally {
	t := &Tally{}
	for _, r := range results {
		t.Add(r)
	}
	return t
}

// Add records one round. Null rounds are ignored.
func (t *Tally) Add(r RawResult) {
	if !r.Found() {
		return
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}

	i, ok := t.index[r.Value]
	if !ok {
		i = len(t.entries)
		t.index[r.Value] = i
		t.entries = append(t.entries, TallyEntry{Value: r.Value})
	}

	t.entries[i].Count++
	t.entries[i].TotalConfidence += r.Confidence
}

// Len returns the number of distinct values.
func (t *Tally) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the tally in first-seen order.
func (t *Tally) Entries() []TallyEntry {
	out := make([]TallyEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Winner returns the entry with the highest count.
//
// Entries are scanned in first-seen order and a later entry replaces the
// current best only on a strictly higher count, or on an equal count with
// strictly higher total confidence. At equal counts that is the same as a
// strictly higher mean confidence, so the outcome of a tie does not depend on
// which value was seen first unless the means are also equal.
func (t *Tally) Winner() (TallyEntry, bool) {
	var best TallyEntry
	found := false

	for _, e := range t.entries {
		if !found || e.Count > best.Count || (e.Count == best.Count && e.TotalConfidence > best.TotalConfidence) {
			best = e
			found = true
		}
	}

	return best, found
}

// Recognition votes over recognition rounds.
//
// results holds one entry per round that produced output; rounds whose
// invocation failed must not be included, so len(results) may be smaller than
// the number of rounds requested. The threshold is compared against
// winner.Count / len(results).
//
// An empty input yields a zero result. If every round was null the result
// reports TotalRounds but no winner. An unconfirmed winner keeps its
// Confidence and VoteCount while Value is withheld.
func Recognition(results []RawResult, threshold float64) RecognitionConsensus {
	if len(results) == 0 {
		return RecognitionConsensus{}
	}

	tally := NewTally(results)
	winner, ok := tally.Winner()
	if !ok {
		return RecognitionConsensus{TotalRounds: len(results)}
	}

	confirmed := Confirmed(winner.Count, len(results), threshold)

	c := RecognitionConsensus{
		Candidate:   winner.Value,
		Confidence:  Round4(winner.MeanConfidence()),
		VoteCount:   winner.Count,
		TotalRounds: len(results),
		Confirmed:   confirmed,
	}
	if confirmed {
		c.Value = winner.Value
	}

	return c
}

// SingleRecognition reports one round as-is without voting.
// No cross-round agreement exists, so Confirmed is always false.
func SingleRecognition(r RawResult) RecognitionConsensus {
	c := RecognitionConsensus{
		Value:       r.Value,
		Candidate:   r.Value,
		Confidence:  r.Confidence,
		TotalRounds: 1,
	}
	if r.Found() {
		c.VoteCount = 1
	}
	return c
}
