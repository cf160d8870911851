package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSBackend is a file system implementation of the Backend interface.
type FSBackend struct {
	baseDir string
}

// NewFSBackend creates a file system storage backend rooted at baseDir,
// creating the directory if it does not exist.
func NewFSBackend(baseDir string) (*FSBackend, error) {
	if baseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSBackend{baseDir: baseDir}, nil
}

// path resolves key inside the base directory. Keys are flat file names;
// anything with a separator or traversal component is rejected.
func (b *FSBackend) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}
	if strings.ContainsAny(key, `/\`) || filepath.Base(key) != key || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(b.baseDir, key), nil
}

// Upload writes the object's bytes under key.
func (b *FSBackend) Upload(_ context.Context, key string, reader io.Reader) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}

	file, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Delete removes the object under key.
func (b *FSBackend) Delete(_ context.Context, key string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Exists reports whether an object is present under key.
func (b *FSBackend) Exists(_ context.Context, key string) (bool, error) {
	p, err := b.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
