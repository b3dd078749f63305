package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the registry in a JSON file shaped like extension
// local storage: {"registry": {"skills": [...]}}. Other top-level keys in
// the file are preserved on save.
//
// Writes go to a temp file that is renamed over the target while an
// exclusive lock on <path>.lock is held, so a reader never sees a partial
// document. The lock covers one write only.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the storage file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context) (*Registry, error) {
	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	return decode(doc[StorageKey])
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, reg *Registry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	lock, err := acquireFileLock(s.path + ".lock")
	if err != nil {
		return err
	}
	defer lock.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	value, err := encode(reg)
	if err != nil {
		return err
	}
	doc[StorageKey] = value

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling storage file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing storage file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting storage file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing storage file: %w", err)
	}
	return nil
}

// readDocument returns the top-level key/value map of the storage file.
// A missing file is an empty map.
func (s *FileStore) readDocument() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("reading storage file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing storage file: %w", err)
	}
	return doc, nil
}
