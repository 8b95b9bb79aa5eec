package vote

import "testing"

func TestConfirmed(t *testing.T) {
	tests := []struct {
		votes, total int
		threshold    float64
		want         bool
	}{
		{3, 5, 0.6, true},
		{2, 5, 0.6, false},
		{1, 1, 1.0, true},
		{0, 0, 0.0, false},
		{0, 3, 0.0, true},
		{4, 5, 0.8, true},
		{7, 10, 0.7, true},
	}

	for _, tt := range tests {
		if got := Confirmed(tt.votes, tt.total, tt.threshold); got != tt.want {
			t.Errorf("Confirmed(%d, %d, %v) = %v, want %v", tt.votes, tt.total, tt.threshold, got, tt.want)
		}
	}
}

func TestShare(t *testing.T) {
	if got := Share(3, 5); got != 0.6 {
		t.Errorf("Share(3, 5) = %v", got)
	}
	if got := Share(1, 0); got != 0 {
		t.Errorf("Share(1, 0) = %v, want 0", got)
	}
}

func TestRound4(t *testing.T) {
	tests := map[float64]float64{
		0.123456: 0.1235,
		0.85:     0.85,
		1:        1,
		0:        0,
		0.99999:  1,
	}
	for in, want := range tests {
		if got := Round4(in); got != want {
			t.Errorf("Round4(%v) = %v, want %v", in, got, want)
		}
	}
}
