// Package upload validates and stores uploaded papers.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AllowedExtensions lists accepted file extensions, lower-case, without dot.
var AllowedExtensions = map[string]bool{
	"pdf": true,
}

// ErrNotAllowed is returned when a file name fails the extension check.
var ErrNotAllowed = errors.New("file type not allowed")

// Allowed reports whether filename contains a dot and its last extension is
// accepted, ignoring case.
func Allowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(filename[idx+1:])]
}

// Store saves an uploaded file and returns where it was written.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// LocalStore writes uploads into a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir. The directory is created on
// first save.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Dir returns the upload directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes r to dir/filename, replacing any existing file of that name.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !Allowed(filename) {
		return "", fmt.Errorf("%s: %w", filename, ErrNotAllowed)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	path := filepath.Join(s.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing upload file: %w", err)
	}

	return path, nil
}
