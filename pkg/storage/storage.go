// Package storage writes exported artifacts (PDF reports, rendered HTML)
// under an output directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Storage struct {
	baseDir string
}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// New returns a Storage rooted at baseDir, creating the directory if needed.
// An empty baseDir means the working directory.
func New(baseDir string) (*Storage, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Storage{baseDir: baseDir}, nil
}

// Path returns the location of name inside the storage directory.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// SaveFile writes content to name and returns the full path.
func (s *Storage) SaveFile(name string, content []byte) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}

// ReplaceFile writes content next to name and renames it into place, so a
// reader never sees a half-written file.
func (s *Storage) ReplaceFile(name string, content []byte) (string, error) {
	path := s.Path(name)
	tmp, err := os.CreateTemp(s.baseDir, "."+filepath.Base(name)+".*")
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error replacing file: %w", err)
	}
	return path, nil
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(name string) (*FileStats, error) {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}
