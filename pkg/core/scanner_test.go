package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/typefield/pkg/core"
	"github.com/aretw0/typefield/pkg/marker"
)

func sampleNoteTypes() []core.NoteType {
	tagged := marker.Canonical() + "\n\n{{Back}}"
	return []core.NoteType{
		{
			ID:   "1",
			Name: "Basic",
			Templates: []core.CardTemplate{
				{Name: "Card 1", Ord: 0, Question: "{{Front}}", Answer: "{{FrontSide}}<hr>{{Back}}"},
			},
		},
		{
			ID:   "2",
			Name: "Basic (type in the answer)",
			Templates: []core.CardTemplate{
				{Name: "Card 1", Ord: 0, Question: "{{Front}}\n{{type:Back}}", Answer: "{{FrontSide}}<hr>{{Back}}"},
			},
			Metadata: core.Metadata{"css": ".card {}"},
		},
		{
			ID:   "3",
			Name: "Reversed",
			Templates: []core.CardTemplate{
				{Name: "Forward", Ord: 0, Question: "{{type:Back}}", Answer: tagged},
				{Name: "Reverse", Ord: 1, Question: "{{Back}}", Answer: marker.Canonical() + "\n\n{{Front}}"},
			},
		},
	}
}

func TestScanner_Scan(t *testing.T) {
	noteTypes := sampleNoteTypes()

	mutated := core.NewScanner(nil).Scan(noteTypes)

	require.Len(t, mutated, 2)
	assert.Equal(t, "2", mutated[0].ID)
	assert.Equal(t, "3", mutated[1].ID)

	// In place.
	assert.Equal(t, marker.Canonical()+"\n\n{{FrontSide}}<hr>{{Back}}", noteTypes[1].Templates[0].Answer)
	assert.Equal(t, "{{Front}}", noteTypes[2].Templates[1].Answer)
	assert.Equal(t, "{{FrontSide}}<hr>{{Back}}", noteTypes[0].Templates[0].Answer)

	// Metadata untouched.
	if diff := cmp.Diff(core.Metadata{"css": ".card {}"}, noteTypes[1].Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, core.NewScanner(nil).Scan(noteTypes), "second scan must be a no-op")
}

func TestScanner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves Once Per Mutated Note Type", func(t *testing.T) {
		store := &memNoteTypes{noteTypes: sampleNoteTypes()}

		report, err := core.NewScanner(nil).Run(ctx, store)
		require.NoError(t, err)

		assert.Equal(t, []string{"2", "3"}, store.saves)
		want := core.ScanReport{
			NoteTypes: 3,
			Templates: 4,
			Changed:   2,
			Mutated:   []string{"Basic (type in the answer)", "Reversed"},
		}
		if diff := cmp.Diff(want, report); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}

		store.saves = nil
		report, err = core.NewScanner(nil).Run(ctx, store)
		require.NoError(t, err)
		assert.Empty(t, store.saves)
		assert.Zero(t, report.Changed)
	})

	t.Run("List Failure", func(t *testing.T) {
		store := &memNoteTypes{allErr: errors.New("collection closed")}

		_, err := core.NewScanner(nil).Run(ctx, store)
		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	})

	t.Run("Save Failure Aborts", func(t *testing.T) {
		store := &memNoteTypes{noteTypes: sampleNoteTypes(), saveErr: errors.New("disk full")}

		report, err := core.NewScanner(nil).Run(ctx, store)
		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
		assert.Empty(t, report.Mutated)
		assert.Equal(t, 2, report.NoteTypes)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		store := &memNoteTypes{noteTypes: sampleNoteTypes()}
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := core.NewScanner(nil).Run(cctx, store)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, store.saves)
	})
}

func TestScanner_Purge(t *testing.T) {
	store := &memNoteTypes{noteTypes: sampleNoteTypes()}

	report, err := core.NewScanner(nil).Purge(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, []string{"3"}, store.saves)
	assert.Equal(t, 2, report.Changed)
	for _, nt := range store.noteTypes {
		for _, tmpl := range nt.Templates {
			assert.False(t, marker.Matches(tmpl.Answer), "%s/%s still tagged", nt.Name, tmpl.Name)
		}
	}
}

func TestScanner_Inspect(t *testing.T) {
	noteTypes := sampleNoteTypes()

	got := core.NewScanner(nil).Inspect(noteTypes)

	want := []core.TemplateStatus{
		{NoteTypeID: "1", NoteType: "Basic", Template: "Card 1", Ord: 0, Typed: false, Tags: 0, Action: core.ActionNone},
		{NoteTypeID: "2", NoteType: "Basic (type in the answer)", Template: "Card 1", Ord: 0, Typed: true, Tags: 0, Action: core.ActionInsert},
		{NoteTypeID: "3", NoteType: "Reversed", Template: "Forward", Ord: 0, Typed: true, Tags: 1, Action: core.ActionNone},
		{NoteTypeID: "3", NoteType: "Reversed", Template: "Reverse", Ord: 1, Typed: false, Tags: 1, Action: core.ActionRemove},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Inspect mismatch (-want +got):\n%s", diff)
	}

	// Read-only.
	if diff := cmp.Diff(sampleNoteTypes(), noteTypes); diff != "" {
		t.Errorf("Inspect modified input (-want +got):\n%s", diff)
	}
}
