package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/typefield/pkg/core"
)

// VersionFile is the name of the plain-text version slot in the add-on folder.
const VersionFile = "VERSION"

// VersionStore implements core.VersionStore as a plain-text file.
type VersionStore struct {
	Path string
}

// NewVersionStore creates a version slot at path.
func NewVersionStore(path string) *VersionStore {
	return &VersionStore{Path: path}
}

// Load reads the slot. A missing or blank file means no version was recorded.
func (v *VersionStore) Load(ctx context.Context) (core.VersionRecord, bool, error) {
	data, err := os.ReadFile(v.Path)
	if errors.Is(err, os.ErrNotExist) {
		return core.VersionRecord{}, false, nil
	}
	if err != nil {
		return core.VersionRecord{}, false, err
	}

	version := strings.TrimSpace(string(data))
	if version == "" {
		return core.VersionRecord{}, false, nil
	}
	return core.VersionRecord{Version: version}, true, nil
}

// Save replaces the slot atomically, so it is never partially written.
func (v *VersionStore) Save(ctx context.Context, rec core.VersionRecord) error {
	if err := os.MkdirAll(filepath.Dir(v.Path), 0755); err != nil {
		return err
	}
	return writeFileAtomic(v.Path, []byte(rec.Version), 0644)
}

// Clear removes the slot.
func (v *VersionStore) Clear(ctx context.Context) error {
	if err := os.Remove(v.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

var _ core.VersionStore = (*VersionStore)(nil)
