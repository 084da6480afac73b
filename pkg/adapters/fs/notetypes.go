package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/typefield/pkg/core"
)

// noteTypeGlob selects the note-type documents inside the store directory.
const noteTypeGlob = "**/*.{json,yaml,yml}"

// Keys owned by the core. Every other key is carried in Metadata.
const (
	keyID        = "id"
	keyName      = "name"
	keyTemplates = "tmpls"
	keyOrd       = "ord"
	keyQuestion  = "qfmt"
	keyAnswer    = "afmt"
)

// NoteTypeStore implements core.NoteTypeStore over a directory of exported
// note types, one JSON or YAML document per file, using the host's key names
// (id, name, tmpls[].qfmt, tmpls[].afmt).
type NoteTypeStore struct {
	Path   string
	Logger *slog.Logger

	mu    sync.Mutex
	paths map[string]string // note type ID -> file, filled by All
}

// NewNoteTypeStore creates a store over the documents under path.
func NewNoteTypeStore(path string, logger *slog.Logger) *NoteTypeStore {
	return &NoteTypeStore{
		Path:   path,
		Logger: logger,
		paths:  make(map[string]string),
	}
}

// All parses every note-type document, ordered by file path.
func (s *NoteTypeStore) All(ctx context.Context) ([]core.NoteType, error) {
	matches, err := doublestar.Glob(os.DirFS(s.Path), noteTypeGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Path, err)
	}
	sort.Strings(matches)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.NoteType, 0, len(matches))
	for _, rel := range matches {
		if strings.HasPrefix(filepath.Base(rel), TempFilePrefix) {
			continue
		}
		full := filepath.Join(s.Path, filepath.FromSlash(rel))

		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		payload, err := decodeDocument(data, filepath.Ext(full))
		if err != nil {
			return nil, fmt.Errorf("failed to parse note type %s: %w", rel, err)
		}

		nt := noteTypeFromPayload(payload)
		if nt.ID == "" {
			nt.ID = idFromPath(rel)
		}
		s.paths[nt.ID] = full
		out = append(out, nt)

		if s.Logger != nil {
			s.Logger.Debug("note type loaded", "id", nt.ID, "path", full, "templates", len(nt.Templates))
		}
	}
	return out, nil
}

// Save writes nt back to the file it was loaded from, or to <id>.json when new.
// Keys of an existing document keep their original values and types unless nt
// changed them, and keys the document never had are not added.
func (s *NoteTypeStore) Save(ctx context.Context, nt core.NoteType) error {
	if nt.ID == "" {
		return fmt.Errorf("note type has no ID")
	}

	s.mu.Lock()
	full, ok := s.paths[nt.ID]
	if !ok {
		full = filepath.Join(s.Path, filepath.FromSlash(nt.ID)+".json")
		s.paths[nt.ID] = full
	}
	s.mu.Unlock()

	var orig map[string]any
	var impliedID string
	if data, err := os.ReadFile(full); err == nil {
		if orig, err = decodeDocument(data, filepath.Ext(full)); err != nil {
			return fmt.Errorf("failed to parse note type %s: %w", nt.ID, err)
		}
		if rel, err := filepath.Rel(s.Path, full); err == nil {
			impliedID = idFromPath(filepath.ToSlash(rel))
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := encodeDocument(payloadFromNoteType(nt, orig, impliedID), filepath.Ext(full))
	if err != nil {
		return fmt.Errorf("failed to serialize note type %s: %w", nt.ID, err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	return writeFileAtomic(full, data, 0644)
}

// ComponentType implements introspection.Component.
func (s *NoteTypeStore) ComponentType() string {
	return "fs-notetypes"
}

func decodeDocument(data []byte, ext string) (map[string]any, error) {
	var payload map[string]any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		// Host IDs are millisecond timestamps; keep them exact.
		decoder.UseNumber()
		if err := decoder.Decode(&payload); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	}
	if payload == nil {
		payload = make(map[string]any)
	}
	return payload, nil
}

func encodeDocument(payload map[string]any, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(payload)
	default:
		// Templates are HTML; keep them readable instead of \u003c-escaped.
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(payload); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

func noteTypeFromPayload(payload map[string]any) core.NoteType {
	nt := core.NoteType{Metadata: make(core.Metadata)}
	for k, v := range payload {
		switch k {
		case keyID:
			nt.ID = scalarString(v)
		case keyName:
			nt.Name = scalarString(v)
		case keyTemplates:
			list, _ := v.([]any)
			for i, item := range list {
				fields, _ := item.(map[string]any)
				nt.Templates = append(nt.Templates, templateFromPayload(fields, i))
			}
		default:
			nt.Metadata[k] = v
		}
	}
	return nt
}

func templateFromPayload(fields map[string]any, index int) core.CardTemplate {
	tmpl := core.CardTemplate{Ord: index, Metadata: make(core.Metadata)}
	for k, v := range fields {
		switch k {
		case keyName:
			tmpl.Name = scalarString(v)
		case keyOrd:
			if n, err := strconv.Atoi(scalarString(v)); err == nil {
				tmpl.Ord = n
			}
		case keyQuestion:
			tmpl.Question = scalarString(v)
		case keyAnswer:
			tmpl.Answer = scalarString(v)
		default:
			tmpl.Metadata[k] = v
		}
	}
	return tmpl
}

// payloadFromNoteType builds the document for nt. orig is the document on
// disk, nil for a new file; impliedID is the ID its path stands for.
func payloadFromNoteType(nt core.NoteType, orig map[string]any, impliedID string) map[string]any {
	payload := make(map[string]any, len(nt.Metadata)+3)
	for k, v := range nt.Metadata {
		payload[k] = v
	}
	setOwned(payload, orig, keyID, nt.ID, impliedID)
	setOwned(payload, orig, keyName, nt.Name, "")

	origTmpls, _ := orig[keyTemplates].([]any)
	tmpls := make([]any, 0, len(nt.Templates))
	for i, tmpl := range nt.Templates {
		var origFields map[string]any
		if i < len(origTmpls) {
			origFields, _ = origTmpls[i].(map[string]any)
		}
		fields := make(map[string]any, len(tmpl.Metadata)+4)
		for k, v := range tmpl.Metadata {
			fields[k] = v
		}
		setOwned(fields, origFields, keyName, tmpl.Name, "")
		setOwned(fields, origFields, keyOrd, tmpl.Ord, i)
		setOwned(fields, origFields, keyQuestion, tmpl.Question, "")
		setOwned(fields, origFields, keyAnswer, tmpl.Answer, "")
		tmpls = append(tmpls, fields)
	}
	payload[keyTemplates] = tmpls
	return payload
}

// setOwned writes a core-owned key into dst. A value that still reads the same
// as in orig keeps its original form, and a value equal to the one implied by
// the key's absence is left out of documents that never had the key.
func setOwned(dst, orig map[string]any, key string, value, implied any) {
	prev, had := orig[key]
	switch {
	case had && scalarString(prev) == scalarString(value):
		dst[key] = prev
	case orig != nil && !had && scalarString(value) == scalarString(implied):
	default:
		dst[key] = value
	}
}

// idFromPath is the ID of a document that carries none: its slash-separated
// path relative to the store, without extension.
func idFromPath(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

var _ core.NoteTypeStore = (*NoteTypeStore)(nil)
