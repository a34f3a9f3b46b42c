package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// KV is a flat key-value store of raw JSON documents.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// ErrInvalidKey is returned for keys that cannot be stored.
var ErrInvalidKey = errors.New("invalid storage key")

// FileStore keeps every key in its own <key>.json file under dir.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get reads <key>.json. A missing file is reported as absent, not an error.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return data, true, nil
}

// Set atomically replaces <key>.json.
func (s *FileStore) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Delete removes <key>.json if present.
func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error deleting %s: %w", path, err)
	}
	return nil
}

// Keys lists the stored keys in lexical order.
func (s *FileStore) Keys() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for files.
func (s *FileStore) Close() error {
	return nil
}

// Open returns the KV backend named by backend rooted at dir.
func Open(backend, dir string) (KV, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "wht.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", backend, BackendFile, BackendSQLite)
	}
}
