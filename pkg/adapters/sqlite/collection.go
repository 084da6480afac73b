// Package sqlite reads and patches note types inside a desktop collection
// database (collection.anki2), where every note type lives in the JSON
// document held by the single row of the col table.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/typefield/pkg/core"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrNoteTypeNotFound is returned by Save for an ID the collection does not hold.
var ErrNoteTypeNotFound = errors.New("note type not found in collection")

// Store implements core.NoteTypeStore over a collection database.
//
// Save only ever rewrites the answer format of each template. Every other
// key of the stored document is left as it was read.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Open connects to the collection at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, path: path, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the collection file.
func (s *Store) Path() string {
	return s.path
}

// All decodes every note type, ordered by ID.
func (s *Store) All(ctx context.Context) ([]core.NoteType, error) {
	var raw string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT models FROM col LIMIT 1").Scan(&raw)
	})
	if err != nil {
		return nil, fmt.Errorf("read models: %w", err)
	}

	models, err := decodeModels(raw)
	if err != nil {
		return nil, err
	}

	out := make([]core.NoteType, 0, len(models))
	for id, model := range models {
		out = append(out, noteTypeFromModel(id, model))
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })

	s.logger.Debug("collection read", "path", s.path, "note_types", len(out))
	return out, nil
}

// Save writes the answer formats of nt back into its stored document and
// marks both the note type and the collection as modified.
func (s *Store) Save(ctx context.Context, nt core.NoteType) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var raw string
		if err := tx.QueryRowContext(ctx, "SELECT models FROM col LIMIT 1").Scan(&raw); err != nil {
			return fmt.Errorf("read models: %w", err)
		}
		models, err := decodeModels(raw)
		if err != nil {
			return err
		}

		model, ok := models[nt.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoteTypeNotFound, nt.ID)
		}

		now := s.now()
		patchAnswers(model, nt.Templates)
		model["mod"] = now.Unix()
		model["usn"] = -1

		encoded, err := encodeModels(models)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE col SET models = ?, mod = ?", encoded, now.UnixMilli()); err != nil {
			return fmt.Errorf("update models: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		s.logger.Debug("note type saved", "id", nt.ID, "name", nt.Name)
		return nil
	})
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite-collection"
}

func decodeModels(raw string) (map[string]map[string]any, error) {
	models := make(map[string]map[string]any)
	if strings.TrimSpace(raw) == "" {
		return models, nil
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()
	if err := decoder.Decode(&models); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	return models, nil
}

func encodeModels(models map[string]map[string]any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(models); err != nil {
		return "", fmt.Errorf("encode models: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func noteTypeFromModel(id string, model map[string]any) core.NoteType {
	nt := core.NoteType{ID: id, Metadata: make(core.Metadata)}
	for k, v := range model {
		switch k {
		case "name":
			nt.Name, _ = v.(string)
		case "tmpls":
			list, _ := v.([]any)
			for i, item := range list {
				fields, _ := item.(map[string]any)
				nt.Templates = append(nt.Templates, templateFromFields(fields, i))
			}
		default:
			nt.Metadata[k] = v
		}
	}
	return nt
}

func templateFromFields(fields map[string]any, index int) core.CardTemplate {
	tmpl := core.CardTemplate{Ord: index, Metadata: make(core.Metadata)}
	for k, v := range fields {
		switch k {
		case "name":
			tmpl.Name, _ = v.(string)
		case "ord":
			if n, ok := v.(json.Number); ok {
				if ord, err := n.Int64(); err == nil {
					tmpl.Ord = int(ord)
				}
			}
		case "qfmt":
			tmpl.Question, _ = v.(string)
		case "afmt":
			tmpl.Answer, _ = v.(string)
		default:
			tmpl.Metadata[k] = v
		}
	}
	return tmpl
}

// patchAnswers sets afmt on the stored templates, matched by ord.
func patchAnswers(model map[string]any, templates []core.CardTemplate) {
	list, _ := model["tmpls"].([]any)
	for i, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ord := templateFromFields(fields, i).Ord
		for _, tmpl := range templates {
			if tmpl.Ord == ord {
				fields["afmt"] = tmpl.Answer
				break
			}
		}
	}
}

func lessID(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

var _ core.NoteTypeStore = (*Store)(nil)
