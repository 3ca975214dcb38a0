package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps the payload in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path. The parent directory must exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (s *FileStore) Path() string { return s.path }

// Read returns the file contents, or false when the file is missing or unreadable.
func (s *FileStore) Read(_ context.Context) ([]byte, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Write replaces the file contents atomically: readers sharing the file see
// either the previous or the new payload, never a partial one.
func (s *FileStore) Write(_ context.Context, payload []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return s.invalid(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return s.invalid(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return s.invalid(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return s.invalid(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return s.invalid(err)
	}
	return nil
}

func (s *FileStore) invalid(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: directory for %s does not exist", ErrInvalidCache, s.path)
	}
	return fmt.Errorf("%w: write %s: %w", ErrInvalidCache, s.path, err)
}
