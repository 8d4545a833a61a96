package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store is the backing storage for pattern sources. Locations are
// slash-separated and relative to the store root.
type Store interface {
	// Exists reports whether location holds a readable artifact.
	Exists(ctx context.Context, location string) (bool, error)

	// Read returns the full content at location.
	Read(ctx context.Context, location string) ([]byte, error)
}

// ErrOutsideRoot indicates a location that escapes the store root.
var ErrOutsideRoot = errors.New("location escapes store root")

// FSStore reads sources from a directory on the local filesystem.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at root.
func NewFSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root: %w", err)
	}
	return &FSStore{root: abs}, nil
}

// Root returns the absolute store root.
func (s *FSStore) Root() string {
	return s.root
}

// Path resolves location to an absolute path inside the root.
func (s *FSStore) Path(location string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(location))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, location)
	}
	return full, nil
}

// Exists implements Store. Directories do not count as artifacts.
func (s *FSStore) Exists(ctx context.Context, location string) (bool, error) {
	path, err := s.Path(location)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Read implements Store.
func (s *FSStore) Read(ctx context.Context, location string) ([]byte, error) {
	path, err := s.Path(location)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
