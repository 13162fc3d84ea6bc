package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend stores one file per record under a directory.
// Writes go to a temporary file in the target directory and are renamed into
// place, so readers never observe a partial record.
type FileBackend struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBackend creates a file backend rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// Name returns "file".
func (b *FileBackend) Name() string { return "file" }

// Dir returns the root directory.
func (b *FileBackend) Dir() string { return b.dir }

// Get reads the record stored under key.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set atomically replaces the record stored under key.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.Path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return Retryable(err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return Retryable(fmt.Errorf("replace %s: %w", p, err))
	}
	return nil
}

// Delete removes the record stored under key. Missing records are not an error.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes every stored record.
func (b *FileBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(b.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// Path converts a key to a file path.
// Uses a hash-based directory structure to avoid too many files in one dir.
func (b *FileBackend) Path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(b.dir, hash[:2], hash[2:]+".layout")
}

// Ensure FileBackend implements Backend.
var _ Backend = (*FileBackend)(nil)
