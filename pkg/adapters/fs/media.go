package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/typefield/pkg/core"
)

// MediaStore implements core.MediaStore over a collection's media folder.
type MediaStore struct {
	Path   string
	Logger *slog.Logger
}

// NewMediaStore creates a media store rooted at path.
func NewMediaStore(path string, logger *slog.Logger) *MediaStore {
	return &MediaStore{Path: path, Logger: logger}
}

// Initialize creates the media folder if it does not exist.
func (m *MediaStore) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(m.Path, 0755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	return nil
}

// Dir returns the media folder.
func (m *MediaStore) Dir() string {
	return m.Path
}

// Has reports whether name exists in the media folder.
func (m *MediaStore) Has(ctx context.Context, name string) (bool, error) {
	full, err := m.resolve(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// Add copies the file at path into the media folder as name.
func (m *MediaStore) Add(ctx context.Context, path, name string) error {
	full, err := m.resolve(name)
	if err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.Debug("copying into media", "source", path, "name", name)
	}
	return copyFileAtomic(path, full, 0644)
}

// Remove deletes name from the media folder.
func (m *MediaStore) Remove(ctx context.Context, name string) error {
	full, err := m.resolve(name)
	if err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.Debug("removing from media", "name", name)
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the names of the regular files in the media folder, sorted.
func (m *MediaStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.Path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), TempFilePrefix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// resolve keeps entries flat: media names never address subdirectories.
func (m *MediaStore) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid media name %q", name)
	}
	return filepath.Join(m.Path, name), nil
}

// ComponentType implements introspection.Component.
func (m *MediaStore) ComponentType() string {
	return "fs-media"
}

var _ core.MediaStore = (*MediaStore)(nil)
var _ core.MediaLister = (*MediaStore)(nil)
