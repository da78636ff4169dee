package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var errClosed = errors.New("store is closed")

// fileData is the on-disk layout: namespace -> key -> value.
type fileData struct {
	Namespaces map[string]map[string]string `json:"namespaces"`
}

// FileStore persists values in a JSON file readable only by the owner.
type FileStore struct {
	mu        sync.Mutex
	path      string
	namespace string
	closed    bool
}

// NewFileStore creates a store backed by the file at path. The file and its
// directory are created on first write.
func NewFileStore(path, namespace string) *FileStore {
	return &FileStore{path: path, namespace: namespace}
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", false, errClosed
	}
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data.Namespaces[s.namespace][key]
	return v, ok, nil
}

// SetIfAbsent implements Store.
func (s *FileStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", errClosed
	}
	data, err := s.load()
	if err != nil {
		return "", err
	}
	if existing := data.Namespaces[s.namespace][key]; existing != "" {
		return existing, nil
	}

	if data.Namespaces[s.namespace] == nil {
		data.Namespaces[s.namespace] = make(map[string]string)
	}
	data.Namespaces[s.namespace][key] = value
	if err := s.save(data); err != nil {
		return "", err
	}
	return value, nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *FileStore) load() (*fileData, error) {
	data := &fileData{Namespaces: make(map[string]map[string]string)}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", s.path, err)
	}
	if data.Namespaces == nil {
		data.Namespaces = make(map[string]map[string]string)
	}
	return data, nil
}

// save writes data to a temp file and renames it over the store file.
func (s *FileStore) save(data *fileData) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create %s: %w", dir, err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal session data: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write session data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write session data: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("could not replace %s: %w", s.path, err)
	}
	return nil
}
