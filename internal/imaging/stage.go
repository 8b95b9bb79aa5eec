package imaging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Staged is an upload written to a temporary file for one request.
type Staged struct {
	// Path is the absolute path of the staged file.
	Path string

	cache *ImageCache
}

// Stage copies r into a new uuid-named file inside dir.
//
// ext is the file extension including the dot (".jpg" when empty). dir is
// created if needed; an empty dir means os.TempDir(). The caller must Close
// the returned handle. On error nothing is left on disk.
func Stage(dir string, r io.Reader, ext string, cache *ImageCache) (*Staged, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if ext == "" {
		ext = ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+"_input"+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close staged file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Staged{Path: abs, cache: cache}, nil
}

// Close removes the staged file and evicts it from the cache.
// Closing twice is harmless.
func (s *Staged) Close() error {
	if s.cache != nil {
		s.cache.Evict(s.Path)
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove staged file: %w", err)
	}
	return nil
}
