package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadPath = errors.New("blob path escapes storage root")

// BlobStore persists image payloads addressed by relative path under a
// public base.
type BlobStore interface {
	Put(path string, data []byte) error
	Delete(path string) error
	Get(path string) ([]byte, error)
}

// DiskStore keeps blobs on the local filesystem.
type DiskStore struct {
	baseDir string
}

// NewDiskStore constructs a DiskStore rooted at baseDir.
func NewDiskStore(baseDir string) *DiskStore {
	return &DiskStore{baseDir: baseDir}
}

func (s *DiskStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean("/" + path)
	if cleaned == "/" {
		return "", ErrBadPath
	}
	full := filepath.Join(s.baseDir, cleaned)
	if !strings.HasPrefix(full, filepath.Clean(s.baseDir)+string(os.PathSeparator)) {
		return "", ErrBadPath
	}
	return full, nil
}

// Put writes a blob, creating parent directories as needed.
func (s *DiskStore) Put(path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	return os.WriteFile(full, data, 0o644)
}

// Delete removes a blob.
func (s *DiskStore) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// Get reads a blob back.
func (s *DiskStore) Get(path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}
