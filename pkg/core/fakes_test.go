package core_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aretw0/typefield/pkg/core"
)

// memNoteTypes implements core.NoteTypeStore in memory.
type memNoteTypes struct {
	noteTypes []core.NoteType
	saves     []string
	allErr    error
	saveErr   error
}

func (m *memNoteTypes) All(ctx context.Context) ([]core.NoteType, error) {
	if m.allErr != nil {
		return nil, m.allErr
	}
	out := make([]core.NoteType, len(m.noteTypes))
	for i, nt := range m.noteTypes {
		out[i] = cloneNoteType(nt)
	}
	return out, nil
}

func (m *memNoteTypes) Save(ctx context.Context, nt core.NoteType) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, nt.ID)
	for i := range m.noteTypes {
		if m.noteTypes[i].ID == nt.ID {
			m.noteTypes[i] = cloneNoteType(nt)
			return nil
		}
	}
	m.noteTypes = append(m.noteTypes, cloneNoteType(nt))
	return nil
}

func cloneNoteType(nt core.NoteType) core.NoteType {
	out := nt
	out.Templates = append([]core.CardTemplate(nil), nt.Templates...)
	return out
}

// memMedia implements core.MediaStore and core.MediaLister in memory.
type memMedia struct {
	entries map[string][]byte
	ops     []string
	hasErr  error
	addErr  error
}

func newMemMedia() *memMedia {
	return &memMedia{entries: make(map[string][]byte)}
}

func (m *memMedia) Dir() string { return "mem://media" }

func (m *memMedia) Has(ctx context.Context, name string) (bool, error) {
	if m.hasErr != nil {
		return false, m.hasErr
	}
	_, ok := m.entries[name]
	return ok, nil
}

func (m *memMedia) Add(ctx context.Context, path, name string) error {
	m.ops = append(m.ops, "add "+name)
	if m.addErr != nil {
		return m.addErr
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m.entries[name] = data
	return nil
}

func (m *memMedia) Remove(ctx context.Context, name string) error {
	m.ops = append(m.ops, "remove "+name)
	delete(m.entries, name)
	return nil
}

func (m *memMedia) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// memVersions implements core.VersionStore in memory.
type memVersions struct {
	rec     *core.VersionRecord
	saves   int
	loadErr error
	saveErr error
}

func (m *memVersions) Load(ctx context.Context) (core.VersionRecord, bool, error) {
	if m.loadErr != nil {
		return core.VersionRecord{}, false, m.loadErr
	}
	if m.rec == nil {
		return core.VersionRecord{}, false, nil
	}
	return *m.rec, true, nil
}

func (m *memVersions) Save(ctx context.Context, rec core.VersionRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.rec = &rec
	return nil
}

func (m *memVersions) Clear(ctx context.Context) error {
	m.rec = nil
	return nil
}

func (m *memVersions) stored() string {
	if m.rec == nil {
		return ""
	}
	return m.rec.Version
}

// memConfigs implements core.ConfigStore, rendering snapshots into a temp dir.
type memConfigs struct {
	cfg *core.Config
	dir string
}

func (m *memConfigs) Load(ctx context.Context) (core.Config, error) {
	if m.cfg == nil {
		return core.DefaultConfig(), nil
	}
	return *m.cfg, nil
}

func (m *memConfigs) Save(ctx context.Context, cfg core.Config) error {
	m.cfg = &cfg
	return nil
}

func (m *memConfigs) WriteSnapshot(ctx context.Context, cfg core.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.dir, core.SnapshotName)
	return path, os.WriteFile(path, data, 0644)
}

// countingDeployer records Deploy calls and optionally fails them.
type countingDeployer struct {
	calls int
	err   error
}

func (d *countingDeployer) Deploy(ctx context.Context, sourcePath, targetName string) error {
	d.calls++
	return d.err
}

// writeAsset creates a fake shipped asset and returns its path.
func writeAsset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "_smarterTypeField.min.js")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}
