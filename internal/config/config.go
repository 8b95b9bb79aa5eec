// Package config loads service settings.
//
// Settings are resolved in three layers, later layers winning:
//
//  1. built-in defaults (Default)
//  2. an optional YAML file
//  3. environment variables
//
// The YAML keys match the yaml tags on Config. Durations use Go syntax
// ("30s", "1h").
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	RecognizerTesseract = "tesseract"
	RecognizerCommand   = "easyocr"

	DetectorContour = "contour"
	DetectorCommand = "yolo"
)

// Config holds every tunable of the service.
type Config struct {
	// Address is the HTTP listen address used by --http when none is given.
	Address string `yaml:"address"`

	// TempDir receives staged uploads.
	TempDir string `yaml:"temp_dir"`

	PythonPath       string        `yaml:"python_path"`
	RecognizerScript string        `yaml:"recognizer_script"`
	DetectorScript   string        `yaml:"detector_script"`
	Timeout          time.Duration `yaml:"timeout"`
	UseGPU           bool          `yaml:"use_gpu"`

	// Recognizer and Detector name the default backends.
	Recognizer string `yaml:"recognizer"`
	Detector   string `yaml:"detector"`

	// Language is the Tesseract language code.
	Language string `yaml:"language"`

	VoteRounds    int     `yaml:"vote_rounds"`
	VoteThreshold float64 `yaml:"vote_threshold"`
	Confidence    float64 `yaml:"confidence"`

	SessionTTL      time.Duration `yaml:"session_ttl"`
	SessionDebounce time.Duration `yaml:"session_debounce"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Address: ":8080",
		TempDir: "temp",

		PythonPath: "python",
		Timeout:    60 * time.Second,

		Recognizer: RecognizerTesseract,
		Detector:   DetectorContour,
		Language:   "eng",

		VoteRounds:    5,
		VoteThreshold: 0.6,
		Confidence:    0.5,

		SessionTTL:      time.Hour,
		SessionDebounce: time.Second,
	}
}

// Load resolves the configuration.
//
// path names a YAML file; when empty, VISION_VOTE_CONFIG is consulted, and
// when that is empty too no file is read. A named file that does not exist is
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VISION_VOTE_CONFIG")
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return nil
}

func (cfg *Config) applyEnv() error {
	stringVars := map[string]*string{
		"PYTHON_PATH":                   &cfg.PythonPath,
		"VISION_VOTE_ADDR":              &cfg.Address,
		"VISION_VOTE_TEMP_DIR":          &cfg.TempDir,
		"VISION_VOTE_RECOGNIZER":        &cfg.Recognizer,
		"VISION_VOTE_DETECTOR":          &cfg.Detector,
		"VISION_VOTE_RECOGNIZER_SCRIPT": &cfg.RecognizerScript,
		"VISION_VOTE_DETECTOR_SCRIPT":   &cfg.DetectorScript,
		"VISION_VOTE_LANGUAGE":          &cfg.Language,
	}

	for key, dst := range stringVars {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"VISION_VOTE_TIMEOUT":          &cfg.Timeout,
		"VISION_VOTE_SESSION_TTL":      &cfg.SessionTTL,
		"VISION_VOTE_SESSION_DEBOUNCE": &cfg.SessionDebounce,
	}

	for key, dst := range durations {
		v := os.Getenv(key)

		if v == "" {
			continue
		}

		d, err := time.ParseDuration(v)

		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}

		*dst = d
	}

	if v := os.Getenv("VISION_VOTE_USE_GPU"); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fmt.Errorf("invalid VISION_VOTE_USE_GPU: %w", err)
		}

		cfg.UseGPU = b
	}

	return nil
}

// Validate reports settings that cannot work.
func (cfg *Config) Validate() error {
	var errs []error

	switch cfg.Recognizer {
	case RecognizerTesseract, RecognizerCommand:
	default:
		errs = append(errs, fmt.Errorf("unknown recognizer %q", cfg.Recognizer))
	}

	switch cfg.Detector {
	case DetectorContour, DetectorCommand:
	default:
		errs = append(errs, fmt.Errorf("unknown detector %q", cfg.Detector))
	}

	if cfg.Recognizer == RecognizerCommand && cfg.RecognizerScript == "" {
		errs = append(errs, errors.New("recognizer_script is required for the easyocr recognizer"))
	}

	if cfg.Detector == DetectorCommand && cfg.DetectorScript == "" {
		errs = append(errs, errors.New("detector_script is required for the yolo detector"))
	}

	if cfg.VoteRounds < 1 {
		errs = append(errs, fmt.Errorf("vote_rounds must be at least 1, got %d", cfg.VoteRounds))
	}

	if !(cfg.VoteThreshold > 0 && cfg.VoteThreshold <= 1) {
		errs = append(errs, fmt.Errorf("vote_threshold must be in (0, 1], got %v", cfg.VoteThreshold))
	}

	if !(cfg.Confidence > 0 && cfg.Confidence <= 1) {
		errs = append(errs, fmt.Errorf("confidence must be in (0, 1], got %v", cfg.Confidence))
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	return errors.Join(errs...)
}
