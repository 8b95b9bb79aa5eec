package pipeline

import (
	"github.com/ironsheep/vision-vote/internal/rounds"
)

// BackendStatus is one entry of a status report.
type BackendStatus struct {
	rounds.BackendInfo
	Default bool `json:"default"`
}

// Status lists the registered backends.
type Status struct {
	Recognizers []BackendStatus `json:"recognizers"`
	Detectors   []BackendStatus `json:"detectors"`
	Defaults    struct {
		VoteRounds    int     `json:"vote_rounds"`
		VoteThreshold float64 `json:"vote_threshold"`
		Confidence    float64 `json:"confidence"`
	} `json:"defaults"`
}

// Status reports every registered backend and the request defaults.
func (s *Service) Status() *Status {
	st := &Status{
		Recognizers: make([]BackendStatus, 0, len(s.recognizers)),
		Detectors:   make([]BackendStatus, 0, len(s.detectors)),
	}

	for _, name := range s.Recognizers() {
		st.Recognizers = append(st.Recognizers, describe(name, s.recognizers[name], name == s.defaults.Recognizer))
	}
	for _, name := range s.Detectors() {
		st.Detectors = append(st.Detectors, describe(name, s.detectors[name], name == s.defaults.Detector))
	}

	st.Defaults.VoteRounds = s.defaults.VoteRounds
	st.Defaults.VoteThreshold = s.defaults.VoteThreshold
	st.Defaults.Confidence = s.defaults.Confidence

	return st
}

// Healthy reports whether both default backends are available.
func (s *Service) Healthy() bool {
	st := s.Status()
	return defaultAvailable(st.Recognizers) && defaultAvailable(st.Detectors)
}

func describe(name string, backend any, isDefault bool) BackendStatus {
	info := rounds.BackendInfo{Available: true}
	if d, ok := backend.(rounds.Describer); ok {
		info = d.Info()
	}
	info.Name = name
	return BackendStatus{BackendInfo: info, Default: isDefault}
}

func defaultAvailable(list []BackendStatus) bool {
	for _, b := range list {
		if b.Default {
			return b.Available
		}
	}
	return false
}
