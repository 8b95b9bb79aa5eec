package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long a session lives after creation.
const DefaultTTL = time.Hour

// Session is one client's multi-frame vote.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	confirmer *Confirmer
}

// Status is the externally visible state of a session.
type Status struct {
	SessionID   string    `json:"session_id"`
	TotalFrames int       `json:"total_frames"`
	WindowSize  int       `json:"window_size"`
	Threshold   float64   `json:"threshold"`
	Confirmed   bool      `json:"confirmed"`
	NumberCode  *string   `json:"number_code"`
	Confidence  float64   `json:"confidence"`
	Votes       int       `json:"votes"`
	Results     []Frame   `json:"results"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// FrameResult is returned by AddFrame.
type FrameResult struct {
	// Confirmation is set when this frame confirmed a code.
	Confirmation *Confirmation `json:"confirmation"`

	Status *Status `json:"status"`
}

// Manager owns the live sessions.
type Manager struct {
	store    *Store[*Session]
	ttl      time.Duration
	debounce time.Duration
	now      func() time.Time
}

// NewManager creates a manager whose sessions live for ttl (DefaultTTL when
// ttl <= 0) and confirm with the given debounce.
func NewManager(ttl, debounce time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:    NewStore[*Session](),
		ttl:      ttl,
		debounce: debounce,
		now:      time.Now,
	}
}

// SetClock replaces the time source for the manager and its new sessions.
// Intended for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
	m.store.SetClock(now)
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create starts a session. Out-of-range parameters fall back to the
// Confirmer defaults.
func (m *Manager) Create(windowSize int, threshold float64) *Status {
	c := NewConfirmer(windowSize, threshold, m.debounce)
	c.SetClock(m.now)

	created := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: created,
		ExpiresAt: created.Add(m.ttl),
		confirmer: c,
	}
	m.store.Put(s.ID, s, m.ttl)

	return s.status()
}

// AddFrame records one recognition result in session id.
// An empty code records a frame that read nothing.
func (m *Manager) AddFrame(id, code string, confidence float64) (*FrameResult, error) {
	s, ok := m.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	conf := s.confirmer.Add(code, confidence)
	return &FrameResult{Confirmation: conf, Status: s.status()}, nil
}

// Status returns the current state of session id.
func (m *Manager) Status(id string) (*Status, error) {
	s, ok := m.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s.status(), nil
}

// Delete ends session id.
func (m *Manager) Delete(id string) error {
	if !m.store.Delete(id) {
		return ErrNotFound
	}
	return nil
}

// Sweep removes expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	return m.store.Sweep()
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (m *Manager) Len() int {
	return m.store.Len()
}

func (s *Session) status() *Status {
	c := s.confirmer
	consensus := c.Consensus()
	stats := c.Stats()

	st := &Status{
		SessionID:   s.ID,
		TotalFrames: stats.TotalFrames,
		WindowSize:  stats.WindowSize,
		Threshold:   stats.Threshold,
		Confirmed:   consensus.Confirmed,
		Confidence:  consensus.Confidence,
		Votes:       consensus.VoteCount,
		Results:     c.Frames(),
		CreatedAt:   s.CreatedAt,
		ExpiresAt:   s.ExpiresAt,
	}
	if consensus.Confirmed {
		code := consensus.Value
		st.NumberCode = &code
	}
	return st
}
