package fs

import (
	"context"
	"sort"

	"github.com/aretw0/introspection"
)

// NoteTypeStoreState exposes the note-type store for observability.
type NoteTypeStoreState struct {
	Path      string   `json:"path"`
	Documents []string `json:"documents"`
}

// State implements introspection.Introspectable. Documents lists the files
// seen by the last All call.
func (s *NoteTypeStore) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]string, 0, len(s.paths))
	for _, path := range s.paths {
		docs = append(docs, path)
	}
	sort.Strings(docs)

	return NoteTypeStoreState{Path: s.Path, Documents: docs}
}

// MediaStoreState exposes the media store for observability.
type MediaStoreState struct {
	Path    string   `json:"path"`
	Entries []string `json:"entries,omitempty"`
}

// State implements introspection.Introspectable.
func (m *MediaStore) State() any {
	// Listing errors leave Entries empty; a missing folder is a valid state.
	entries, _ := m.List(context.Background())
	return MediaStoreState{Path: m.Path, Entries: entries}
}

var (
	_ introspection.Introspectable = (*NoteTypeStore)(nil)
	_ introspection.Component      = (*NoteTypeStore)(nil)
	_ introspection.Introspectable = (*MediaStore)(nil)
	_ introspection.Component      = (*MediaStore)(nil)
	_ introspection.Component      = (*ConfigWatcher)(nil)
)
