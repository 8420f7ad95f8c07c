// Package sessionstore persists browser storage-state snapshots, one file per role.
package sessionstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrNotFound is returned by Load when no snapshot exists at the path.
var ErrNotFound = errors.New("session state not found")

// Store reads and writes snapshots on a filesystem.
type Store struct {
	fs afero.Fs
}

// New creates a store over fs.
func New(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewOS creates a store over the real filesystem.
func NewOS() *Store {
	return New(afero.NewOsFs())
}

// Exists reports whether a snapshot is present at path.
func (s *Store) Exists(path string) (bool, error) {
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return ok, nil
}

// Load returns the snapshot stored at path.
func (s *Store) Load(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Save replaces the snapshot at path. The data is written to a sibling temp
// file and renamed into place, so readers see either the old or the new file.
func (s *Store) Save(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to move session state into %s: %w", path, err)
	}

	return nil
}
