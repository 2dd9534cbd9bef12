// Package localstore is the device-local persistence used by the guest cart.
// It holds a single JSON document under one key; every mutation re-reads the
// latest persisted copy before writing, so concurrent writers cannot resurrect
// stale state.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	path string
}

// New opens a store rooted at dir. The document for each key lives in its own
// file; missing files read as empty documents.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local store dir: %w", err)
	}

	return &Store{path: dir}, nil
}

func (s *Store) keyPath(key string) string {
	return filepath.Join(s.path, key+".json")
}

// Read unmarshals the document stored under key into dest. A missing key
// leaves dest untouched and returns ok=false.
func (s *Store) Read(key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readLocked(key, dest)
}

func (s *Store) readLocked(key string, dest any) (bool, error) {
	data, err := os.ReadFile(s.keyPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read local store key %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("corrupt local store document for key %q: %w", key, err)
	}

	return true, nil
}

// Update performs a whole-document read-modify-write under the store lock.
// fn receives whether the key existed; returning an error abandons the write.
func (s *Store) Update(key string, doc any, fn func(exists bool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.readLocked(key, doc)
	if err != nil {
		return err
	}

	if err := fn(exists); err != nil {
		return err
	}

	return s.writeLocked(key, doc)
}

func (s *Store) writeLocked(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode local store document for key %q: %w", key, err)
	}

	// Write-then-rename so readers never observe a half-written document.
	tmp := s.keyPath(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write local store key %q: %w", key, err)
	}

	if err := os.Rename(tmp, s.keyPath(key)); err != nil {
		return fmt.Errorf("failed to persist local store key %q: %w", key, err)
	}

	return nil
}

// Delete removes the document under key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete local store key %q: %w", key, err)
	}

	return nil
}
