package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"VISION_VOTE_CONFIG",
		"PYTHON_PATH",
		"VISION_VOTE_ADDR",
		"VISION_VOTE_TEMP_DIR",
		"VISION_VOTE_RECOGNIZER",
		"VISION_VOTE_DETECTOR",
		"VISION_VOTE_RECOGNIZER_SCRIPT",
		"VISION_VOTE_DETECTOR_SCRIPT",
		"VISION_VOTE_LANGUAGE",
		"VISION_VOTE_TIMEOUT",
		"VISION_VOTE_SESSION_TTL",
		"VISION_VOTE_SESSION_DEBOUNCE",
		"VISION_VOTE_USE_GPU",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.Equal(t, 5, cfg.VoteRounds)
	require.Equal(t, 0.6, cfg.VoteThreshold)
	require.Equal(t, 0.5, cfg.Confidence)
	require.Equal(t, time.Hour, cfg.SessionTTL)
	require.Equal(t, RecognizerTesseract, cfg.Recognizer)
	require.Equal(t, DetectorContour, cfg.Detector)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
address: ":9000"
python_path: /usr/bin/python3
detector: yolo
detector_script: /opt/scripts/yolo_detector.py
timeout: 30s
vote_rounds: 7
session_ttl: 2h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Address)
	require.Equal(t, "/usr/bin/python3", cfg.PythonPath)
	require.Equal(t, DetectorCommand, cfg.Detector)
	require.Equal(t, "/opt/scripts/yolo_detector.py", cfg.DetectorScript)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, 7, cfg.VoteRounds)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)

	// Untouched keys keep their defaults.
	require.Equal(t, 0.6, cfg.VoteThreshold)
	require.Equal(t, RecognizerTesseract, cfg.Recognizer)
}

func TestLoadFileFromEnv(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "vote_rounds: 3\n")
	t.Setenv("VISION_VOTE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 3, cfg.VoteRounds)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "python_path: python3\ntimeout: 30s\n")
	t.Setenv("PYTHON_PATH", "/venv/bin/python")
	t.Setenv("VISION_VOTE_TIMEOUT", "5s")
	t.Setenv("VISION_VOTE_USE_GPU", "true")
	t.Setenv("VISION_VOTE_SESSION_TTL", "10m")
	t.Setenv("VISION_VOTE_SESSION_DEBOUNCE", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/venv/bin/python", cfg.PythonPath)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.True(t, cfg.UseGPU)
	require.Equal(t, 10*time.Minute, cfg.SessionTTL)
	require.Equal(t, 250*time.Millisecond, cfg.SessionDebounce)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "malformed yaml", file: "vote_rounds: [1, 2"},
		{name: "unknown recognizer", file: "recognizer: paddle\n"},
		{name: "command detector without script", file: "detector: yolo\n"},
		{name: "zero rounds", file: "vote_rounds: 0\n"},
		{name: "threshold above one", file: "vote_threshold: 1.5\n"},
		{name: "bad duration env", env: map[string]string{"VISION_VOTE_TIMEOUT": "soon"}},
		{name: "bad debounce env", env: map[string]string{"VISION_VOTE_SESSION_DEBOUNCE": "1 second"}},
		{name: "bad bool env", env: map[string]string{"VISION_VOTE_USE_GPU": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
