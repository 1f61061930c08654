// Package storage provides simple blob persistence for coach state.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is a key-less blob store. Implementations must tolerate absent data
// by returning (nil, nil) from Load.
type Store interface {
	// Save persists the given data.
	Save(data []byte) error

	// Load retrieves the stored data, or (nil, nil) when nothing is stored.
	Load() ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// FileStore persists a single blob to a file, writing through a temp file so
// a crash mid-write never leaves a truncated blob behind.
type FileStore struct {
	Path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes data to the file.
func (s *FileStore) Save(data []byte) error {
	if s.Path == "" {
		return nil
	}

	dir := filepath.Dir(s.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// Load reads the stored blob. A missing file is not an error.
func (s *FileStore) Load() ([]byte, error) {
	if s.Path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error {
	return nil
}

// MemStore keeps the blob in memory, for tests and ephemeral runs.
type MemStore struct {
	data []byte
}

// Save stores a copy of data.
func (s *MemStore) Save(data []byte) error {
	s.data = append([]byte(nil), data...)
	return nil
}

// Load returns the stored blob.
func (s *MemStore) Load() ([]byte, error) {
	return s.data, nil
}

// Close is a no-op.
func (s *MemStore) Close() error {
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemStore)(nil)
)
