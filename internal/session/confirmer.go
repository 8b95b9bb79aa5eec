package session

import (
	"sync"
	"time"

	"github.com/ironsheep/vision-vote/internal/vote"
)

// Confirmer defaults.
const (
	DefaultWindowSize = 5
	DefaultThreshold  = 0.6
	DefaultDebounce   = time.Second
)

// Frame is one recognition result added to a Confirmer.
type Frame struct {
	// Code is the recognized code, empty when the frame read nothing.
	Code       string    `json:"code"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Confirmation is returned by Add when a code is confirmed.
type Confirmation struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
	Votes      int     `json:"votes"`
	VoteRatio  float64 `json:"vote_ratio"`
}

// Stats is a snapshot of a Confirmer.
type Stats struct {
	WindowSize      int               `json:"window_size"`
	Threshold       float64           `json:"threshold"`
	CurrentCount    int               `json:"current_count"`
	TotalFrames     int               `json:"total_frames"`
	Votes           []vote.TallyEntry `json:"votes"`
	LastConfirmed   string            `json:"last_confirmed,omitempty"`
	LastConfirmedAt *time.Time        `json:"last_confirmed_at,omitempty"`
}

// Confirmer confirms a code once it dominates a sliding window of frames.
type Confirmer struct {
	mu sync.Mutex

	windowSize int
	threshold  float64
	debounce   time.Duration
	now        func() time.Time

	window []Frame
	total  int

	lastCode string
	lastAt   time.Time
}

// NewConfirmer creates a confirmer. A windowSize below 1 or a threshold
// outside (0, 1] falls back to the defaults; a negative debounce means none.
func NewConfirmer(windowSize int, threshold float64, debounce time.Duration) *Confirmer {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	if !(threshold > 0 && threshold <= 1) {
		threshold = DefaultThreshold
	}
	if debounce < 0 {
		debounce = 0
	}
	return &Confirmer{
		windowSize: windowSize,
		threshold:  threshold,
		debounce:   debounce,
		now:        time.Now,
		window:     make([]Frame, 0, windowSize),
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *Confirmer) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// WindowSize returns the number of frames in a full window.
func (c *Confirmer) WindowSize() int { return c.windowSize }

// Threshold returns the confirmation threshold.
func (c *Confirmer) Threshold() float64 { return c.threshold }

// Add appends one frame, evicting the oldest when the window is full, and
// returns a Confirmation when the window now confirms a code.
//
// Nothing is confirmed until the window is full. The share is always taken
// over the whole window, so frames that read nothing count against the code.
func (c *Confirmer) Add(code string, confidence float64) *Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.window) == c.windowSize {
		copy(c.window, c.window[1:])
		c.window = c.window[:len(c.window)-1]
	}
	c.window = append(c.window, Frame{Code: code, Confidence: confidence, Timestamp: now})
	c.total++

	if len(c.window) < c.windowSize {
		return nil
	}

	consensus := vote.Recognition(c.results(), c.threshold)
	if !consensus.Confirmed {
		return nil
	}

	if consensus.Value == c.lastCode && now.Sub(c.lastAt) < c.debounce {
		return nil
	}

	c.lastCode = consensus.Value
	c.lastAt = now

	return &Confirmation{
		Code:       consensus.Value,
		Confidence: consensus.Confidence,
		Votes:      consensus.VoteCount,
		VoteRatio:  vote.Share(consensus.VoteCount, c.windowSize),
	}
}

// Consensus votes over the frames currently in the window.
// Unlike Add, it does not wait for the window to fill.
func (c *Confirmer) Consensus() vote.RecognitionConsensus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return vote.Recognition(c.results(), c.threshold)
}

// Frames returns a copy of the frames in the window, oldest first.
func (c *Confirmer) Frames() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Frame, len(c.window))
	copy(out, c.window)
	return out
}

// Stats returns a snapshot of the window and the last confirmation.
func (c *Confirmer) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{
		WindowSize:    c.windowSize,
		Threshold:     c.threshold,
		CurrentCount:  len(c.window),
		TotalFrames:   c.total,
		Votes:         vote.NewTally(c.results()).Entries(),
		LastConfirmed: c.lastCode,
	}
	if !c.lastAt.IsZero() {
		at := c.lastAt
		st.LastConfirmedAt = &at
	}
	return st
}

// Reset empties the window and forgets the last confirmation.
func (c *Confirmer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.window = c.window[:0]
	c.total = 0
	c.lastCode = ""
	c.lastAt = time.Time{}
}

// results converts the window for vote.Recognition. Caller holds mu.
func (c *Confirmer) results() []vote.RawResult {
	out := make([]vote.RawResult, len(c.window))
	for i, f := range c.window {
		out[i] = vote.RawResult{Value: f.Code, Confidence: f.Confidence}
	}
	return out
}
