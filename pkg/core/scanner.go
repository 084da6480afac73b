package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/typefield/pkg/marker"
)

// Transform rewrites one answer body given its question pattern.
// Annotate and Remove are the two transforms the service uses.
type Transform func(question, answer string) (string, bool)

// Scanner applies a Transform to every template of every note type.
type Scanner struct {
	Logger *slog.Logger
}

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{Logger: orDiscard(logger)}
}

// Scan annotates the note types in place and returns the ones that changed,
// in input order.
func (s *Scanner) Scan(noteTypes []NoteType) []NoteType {
	var mutated []NoteType
	for i := range noteTypes {
		if s.apply(&noteTypes[i], Annotate) > 0 {
			mutated = append(mutated, noteTypes[i])
		}
	}
	return mutated
}

// Run annotates the whole store, saving each mutated note type once.
func (s *Scanner) Run(ctx context.Context, store NoteTypeStore) (ScanReport, error) {
	return s.run(ctx, store, Annotate)
}

// Purge removes every marker from the whole store, saving each mutated note type once.
func (s *Scanner) Purge(ctx context.Context, store NoteTypeStore) (ScanReport, error) {
	return s.run(ctx, store, Remove)
}

func (s *Scanner) run(ctx context.Context, store NoteTypeStore, fn Transform) (ScanReport, error) {
	var report ScanReport

	noteTypes, err := store.All(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: list note types: %w", ErrStoreUnavailable, err)
	}

	for i := range noteTypes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		nt := &noteTypes[i]
		report.NoteTypes++
		report.Templates += len(nt.Templates)

		changed := s.apply(nt, fn)
		if changed == 0 {
			continue
		}

		// One save per note type, after all of its templates were processed.
		if err := store.Save(ctx, *nt); err != nil {
			return report, fmt.Errorf("%w: save note type %q: %w", ErrStoreUnavailable, nt.Name, err)
		}
		s.Logger.Info("note type updated", "note_type", nt.Name, "id", nt.ID, "templates", changed)

		report.Changed += changed
		report.Mutated = append(report.Mutated, nt.Name)
	}

	return report, nil
}

// apply rewrites the templates of nt and returns how many changed.
func (s *Scanner) apply(nt *NoteType, fn Transform) int {
	changed := 0
	for i := range nt.Templates {
		tmpl := &nt.Templates[i]
		answer, ok := fn(tmpl.Question, tmpl.Answer)
		if !ok {
			continue
		}
		s.Logger.Debug("template rewritten",
			"note_type", nt.Name,
			"template", tmpl.Name,
			"typed", IsTypedAnswer(tmpl.Question),
		)
		tmpl.Answer = answer
		changed++
	}
	return changed
}

// Inspect classifies every template without modifying anything.
func (s *Scanner) Inspect(noteTypes []NoteType) []TemplateStatus {
	var out []TemplateStatus
	for _, nt := range noteTypes {
		for _, tmpl := range nt.Templates {
			out = append(out, TemplateStatus{
				NoteTypeID: nt.ID,
				NoteType:   nt.Name,
				Template:   tmpl.Name,
				Ord:        tmpl.Ord,
				Typed:      IsTypedAnswer(tmpl.Question),
				Tags:       marker.Count(tmpl.Answer),
				Action:     Classify(tmpl.Question, tmpl.Answer),
			})
		}
	}
	return out
}
