package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// JSONStore persists one value of type T as an indented JSON file. Writes go
// through a temp file and a rename so readers never see a partial document.
type JSONStore[T any] struct {
	mu       sync.RWMutex
	filePath string
}

// NewJSONStore creates the data directory if needed. The file itself is
// created on first Save.
func NewJSONStore[T any](dataDir, filename string) (*JSONStore[T], error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &JSONStore[T]{filePath: filepath.Join(dataDir, filename)}, nil
}

func (s *JSONStore[T]) Path() string {
	return s.filePath
}

// Load returns the stored value, or the zero T if the file does not exist yet.
func (s *JSONStore[T]) Load() (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *JSONStore[T]) Save(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(v)
}

// Update loads, applies fn and saves under one lock. Nothing is written
// when fn returns an error.
func (s *JSONStore[T]) Update(fn func(*T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return s.save(v)
}

func (s *JSONStore[T]) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.filePath)
	return err == nil
}

func (s *JSONStore[T]) load() (T, error) {
	var v T
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return v, err
	}
	if len(data) == 0 {
		return v, nil
	}
	err = json.Unmarshal(data, &v)
	return v, err
}

func (s *JSONStore[T]) save(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.filePath)
}
