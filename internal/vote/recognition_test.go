package vote

import "testing"

// rounds builds recognition results; "" is a null round.
func rounds(conf float64, values ...string) []RawResult {
	out := make([]RawResult, len(values))
	for i, v := range values {
		out[i] = RawResult{Value: v}
		if v != "" {
			out[i].Confidence = conf
		}
	}
	return out
}

func TestRecognition_Empty(t *testing.T) {
	got := Recognition(nil, 0.6)
	want := RecognitionConsensus{}
	if got != want {
		t.Errorf("Recognition(nil) = %+v, want %+v", got, want)
	}
}

func TestRecognition_AllNull(t *testing.T) {
	got := Recognition(rounds(0, "", "", ""), 0.6)
	if got.Value != "" || got.Confirmed || got.VoteCount != 0 {
		t.Errorf("all-null input should be unconfirmed with no votes, got %+v", got)
	}
	if got.TotalRounds != 3 {
		t.Errorf("TotalRounds = %d, want 3", got.TotalRounds)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
}

func TestRecognition_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		results       []RawResult
		threshold     float64
		wantValue     string
		wantCandidate string
		wantVotes     int
		wantTotal     int
		wantConfirmed bool
	}{
		{
			name:          "majority at exact threshold",
			results:       rounds(0.9, "042", "042", "042", "041", ""),
			threshold:     0.6,
			wantValue:     "042",
			wantCandidate: "042",
			wantVotes:     3,
			wantTotal:     5,
			wantConfirmed: true,
		},
		{
			name:          "no value reaches threshold",
			results:       rounds(0.8, "042", "041", "043", "", ""),
			threshold:     0.6,
			wantValue:     "",
			wantCandidate: "042",
			wantVotes:     1,
			wantTotal:     5,
			wantConfirmed: false,
		},
		{
			name:          "unanimous",
			results:       rounds(0.7, "123", "123", "123", "123"),
			threshold:     1.0,
			wantValue:     "123",
			wantCandidate: "123",
			wantVotes:     4,
			wantTotal:     4,
			wantConfirmed: true,
		},
		{
			name:          "single round",
			results:       rounds(0.5, "007"),
			threshold:     0.6,
			wantValue:     "007",
			wantCandidate: "007",
			wantVotes:     1,
			wantTotal:     1,
			wantConfirmed: true,
		},
		{
			name:          "just below threshold",
			results:       rounds(0.9, "001", "001", "002", "003", "004"),
			threshold:     0.41,
			wantValue:     "",
			wantCandidate: "001",
			wantVotes:     2,
			wantTotal:     5,
			wantConfirmed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recognition(tt.results, tt.threshold)
			if got.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", got.Value, tt.wantValue)
			}
			if got.Candidate != tt.wantCandidate {
				t.Errorf("Candidate = %q, want %q", got.Candidate, tt.wantCandidate)
			}
			if got.VoteCount != tt.wantVotes {
				t.Errorf("VoteCount = %d, want %d", got.VoteCount, tt.wantVotes)
			}
			if got.TotalRounds != tt.wantTotal {
				t.Errorf("TotalRounds = %d, want %d", got.TotalRounds, tt.wantTotal)
			}
			if got.Confirmed != tt.wantConfirmed {
				t.Errorf("Confirmed = %v, want %v", got.Confirmed, tt.wantConfirmed)
			}
		})
	}
}

func TestRecognition_UnanimousAlwaysConfirmed(t *testing.T) {
	for n := 1; n <= 7; n++ {
		results := make([]RawResult, n)
		for i := range results {
			results[i] = RawResult{Value: "555", Confidence: 0.6}
		}
		for _, threshold := range []float64{0.1, 0.5, 0.6, 0.99, 1.0} {
			got := Recognition(results, threshold)
			if !got.Confirmed || got.Value != "555" || got.VoteCount != n {
				t.Errorf("n=%d threshold=%v: got %+v", n, threshold, got)
			}
		}
	}
}

func TestRecognition_TieBreakByMeanConfidence(t *testing.T) {
	low := []RawResult{{Value: "100", Confidence: 0.60}, {Value: "100", Confidence: 0.70}}
	high := []RawResult{{Value: "200", Confidence: 0.90}, {Value: "200", Confidence: 0.80}}

	orders := map[string][]RawResult{
		"low first":   {low[0], low[1], high[0], high[1]},
		"high first":  {high[0], high[1], low[0], low[1]},
		"interleaved": {low[0], high[0], low[1], high[1]},
	}

	for name, results := range orders {
		t.Run(name, func(t *testing.T) {
			got := Recognition(results, 0.5)
			if got.Candidate != "200" {
				t.Errorf("winner = %q, want %q", got.Candidate, "200")
			}
			if got.Confidence != 0.85 {
				t.Errorf("Confidence = %v, want 0.85", got.Confidence)
			}
			if !got.Confirmed {
				t.Error("2/4 should confirm at threshold 0.5")
			}
		})
	}
}

func TestRecognition_ExactTieKeepsFirstSeen(t *testing.T) {
	results := []RawResult{
		{Value: "300", Confidence: 0.5},
		{Value: "400", Confidence: 0.5},
	}
	got := Recognition(results, 0.9)
	if got.Candidate != "300" {
		t.Errorf("winner = %q, want first-seen %q", got.Candidate, "300")
	}
}

func TestRecognition_ConfidenceRounding(t *testing.T) {
	results := []RawResult{
		{Value: "042", Confidence: 0.123456},
		{Value: "042", Confidence: 0.123456},
	}
	got := Recognition(results, 0.6)
	if got.Confidence != 0.1235 {
		t.Errorf("Confidence = %v, want 0.1235", got.Confidence)
	}
}

func TestRecognition_UnconfirmedKeepsStatistics(t *testing.T) {
	results := []RawResult{
		{Value: "010", Confidence: 0.4},
		{Value: "011", Confidence: 0.3},
		{Value: "", Confidence: 0},
	}
	got := Recognition(results, 0.6)
	if got.Confirmed || got.Value != "" {
		t.Fatalf("expected unconfirmed result, got %+v", got)
	}
	if got.VoteCount != 1 || got.Confidence != 0.4 {
		t.Errorf("statistics not reported: %+v", got)
	}
}

func TestTally(t *testing.T) {
	tally := NewTally([]RawResult{
		{Value: "b", Confidence: 0.5},
		{Value: "a", Confidence: 0.25},
		{Value: "", Confidence: 0.9},
		{Value: "b", Confidence: 0.75},
	})

	if tally.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tally.Len())
	}

	entries := tally.Entries()
	if entries[0].Value != "b" || entries[1].Value != "a" {
		t.Errorf("entries not in first-seen order: %+v", entries)
	}
	if entries[0].Count != 2 || entries[0].TotalConfidence != 1.25 {
		t.Errorf("entry b = %+v", entries[0])
	}
	if entries[0].MeanConfidence() != 0.625 {
		t.Errorf("MeanConfidence = %v, want 0.625", entries[0].MeanConfidence())
	}

	var zero Tally
	if _, ok := zero.Winner(); ok {
		t.Error("empty tally should have no winner")
	}
	zero.Add(RawResult{Value: "x", Confidence: 1})
	if w, ok := zero.Winner(); !ok || w.Value != "x" {
		t.Errorf("zero-value tally Add/Winner = %+v, %v", w, ok)
	}
}

func TestSingleRecognition(t *testing.T) {
	got := SingleRecognition(RawResult{Value: "042", Confidence: 0.91234})
	if got.Value != "042" || got.Confirmed || got.TotalRounds != 1 || got.VoteCount != 1 {
		t.Errorf("SingleRecognition = %+v", got)
	}
	if got.Confidence != 0.91234 {
		t.Errorf("single-shot confidence should be passed through, got %v", got.Confidence)
	}

	empty := SingleRecognition(RawResult{})
	if empty.Value != "" || empty.VoteCount != 0 || empty.Confirmed {
		t.Errorf("SingleRecognition(null) = %+v", empty)
	}
}
