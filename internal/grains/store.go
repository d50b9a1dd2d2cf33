package grains

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store persists node grains as a YAML mapping on disk. Reads are served
// from memory; every Set rewrites the file atomically through a temporary
// file. The surrounding engine serializes state application, so the mutex
// only guards against accidental concurrent use within one process.
type Store struct {
	path   string
	mu     sync.RWMutex
	values map[string]any
}

// Open loads the grain file at path, creating the parent directory if
// needed. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: map[string]any{},
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create grains directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse grains file: %w", err)
	}
	if s.values == nil {
		s.values = map[string]any{}
	}

	return s, nil
}

// Keys returns the names of all stored grains, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves a grain value by name, nil when absent.
func (s *Store) Get(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.values[name]
}

// Set stores a grain value and saves the whole mapping to disk.
func (s *Store) Set(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name] = value
	return s.save()
}

// Delete removes a grain and saves the mapping, a no-op when absent.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[name]; !ok {
		return nil
	}
	delete(s.values, name)
	return s.save()
}

func (s *Store) save() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to marshal grains: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
