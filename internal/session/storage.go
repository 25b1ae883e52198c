package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Keys persisted by the store.
const (
	KeyToken        = "token"
	KeyPendingEmail = "pending_email"
	KeyPendingRole  = "pending_role"
)

// ErrNotFound is returned by Storage.Get for a key that was never set.
var ErrNotFound = errors.New("session: key not found")

// Storage persists short string values between runs.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStorage keeps one file per key under Dir.
type FileStorage struct {
	Dir string
}

// NewFileStorage returns a FileStorage rooted at dir.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{Dir: dir}
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.Dir, key)
}

// Get implements Storage.
func (s *FileStorage) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set implements Storage.
func (s *FileStorage) Set(key, value string) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", s.Dir, err)
	}
	if err := os.WriteFile(s.path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete implements Storage. Deleting a missing key is not an error.
func (s *FileStorage) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// MemoryStorage keeps values for the life of the process.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements Storage.
func (s *MemoryStorage) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Storage.
func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete implements Storage.
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
