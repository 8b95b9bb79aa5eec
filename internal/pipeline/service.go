package pipeline

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/ironsheep/vision-vote/internal/imaging"
	"github.com/ironsheep/vision-vote/internal/rounds"
)

// ErrUnknownBackend is returned when a request names a backend that is not registered.
var ErrUnknownBackend = errors.New("unknown backend")

// Defaults apply to request parameters that are missing or out of range.
type Defaults struct {
	VoteRounds    int
	VoteThreshold float64
	Confidence    float64

	Recognizer string
	Detector   string
}

// Service runs recognition and detection requests.
type Service struct {
	defaults Defaults

	recognizers map[string]rounds.Recognizer
	detectors   map[string]rounds.Detector

	ocrRunner    *rounds.Runner
	detectRunner *rounds.Runner

	// cache holds images decoded by in-process backends. Entries for a
	// request's path are dropped when the request starts and when it ends.
	cache *imaging.ImageCache

	// Debug enables per-request log lines.
	Debug bool
}

// NewService creates a service without backends.
// Zero or out-of-range defaults are replaced with 5 rounds, threshold 0.6
// and detector confidence 0.5.
func NewService(defaults Defaults) *Service {
	if defaults.VoteRounds < 1 {
		defaults.VoteRounds = 5
	}
	if !inUnitRange(defaults.VoteThreshold) {
		defaults.VoteThreshold = 0.6
	}
	if !inUnitRange(defaults.Confidence) {
		defaults.Confidence = 0.5
	}

	return &Service{
		defaults:     defaults,
		recognizers:  make(map[string]rounds.Recognizer),
		detectors:    make(map[string]rounds.Detector),
		ocrRunner:    rounds.NewRunner("[OCR]"),
		detectRunner: rounds.NewRunner("[DETECT]"),
	}
}

// SetImageCache sets the cache shared by the registered in-process backends.
// Recognize and Detect evict their image path from it so a file rewritten
// between requests is decoded again.
func (s *Service) SetImageCache(cache *imaging.ImageCache) {
	s.cache = cache
}

// release drops the cached pixels of path.
func (s *Service) release(path string) {
	if s.cache != nil {
		s.cache.Evict(path)
	}
}

// Defaults returns the effective defaults.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// RegisterRecognizer adds a recognition backend under name. The first
// registered backend becomes the default unless Defaults.Recognizer names one.
func (s *Service) RegisterRecognizer(name string, r rounds.Recognizer) {
	s.recognizers[name] = r
	if s.defaults.Recognizer == "" {
		s.defaults.Recognizer = name
	}
}

// RegisterDetector adds a detection backend under name. The first
// registered backend becomes the default unless Defaults.Detector names one.
func (s *Service) RegisterDetector(name string, d rounds.Detector) {
	s.detectors[name] = d
	if s.defaults.Detector == "" {
		s.defaults.Detector = name
	}
}

// Recognizers returns the registered recognition backend names, sorted.
func (s *Service) Recognizers() []string {
	return sortedKeys(s.recognizers)
}

// Detectors returns the registered detection backend names, sorted.
func (s *Service) Detectors() []string {
	return sortedKeys(s.detectors)
}

func (s *Service) recognizer(name string) (string, rounds.Recognizer, error) {
	if name == "" {
		name = s.defaults.Recognizer
	}
	r, ok := s.recognizers[name]
	if !ok {
		return name, nil, fmt.Errorf("%w: recognizer %q", ErrUnknownBackend, name)
	}
	return name, r, nil
}

func (s *Service) detector(name string) (string, rounds.Detector, error) {
	if name == "" {
		name = s.defaults.Detector
	}
	d, ok := s.detectors[name]
	if !ok {
		return name, nil, fmt.Errorf("%w: detector %q", ErrUnknownBackend, name)
	}
	return name, d, nil
}

func (s *Service) debugf(format string, args ...any) {
	if s.Debug {
		log.Printf(format, args...)
	}
}

func inUnitRange(v float64) bool {
	return v > 0 && v <= 1
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
