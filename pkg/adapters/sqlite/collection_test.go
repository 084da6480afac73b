package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/typefield/pkg/core"
	"github.com/aretw0/typefield/pkg/marker"
)

const sampleModels = `{
  "1342697561419": {
    "id": 1342697561419,
    "name": "Basic (type in the answer)",
    "mod": 1600000000,
    "usn": 12,
    "css": ".card {}",
    "tmpls": [
      {"name": "Card 1", "ord": 0, "qfmt": "{{Front}}\n\n{{type:Back}}", "afmt": "{{Front}}<hr id=answer>{{type:Back}}", "did": null}
    ]
  },
  "1342697561418": {
    "id": 1342697561418,
    "name": "Basic",
    "mod": 1600000000,
    "usn": 12,
    "tmpls": [
      {"name": "Card 1", "ord": 0, "qfmt": "{{Front}}", "afmt": "{{FrontSide}}<hr id=answer>{{Back}}"}
    ]
  }
}`

func setupCollection(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "collection.anki2")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE col (
		id integer primary key,
		crt integer not null,
		mod integer not null,
		scm integer not null,
		ver integer not null,
		dty integer not null,
		usn integer not null,
		ls integer not null,
		conf text not null,
		models text not null,
		decks text not null,
		dconf text not null,
		tags text not null
	)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO col VALUES (1, 0, 1, 0, 11, 0, 0, 0, '{}', ?, '{}', '{}', '{}')`, sampleModels)
	require.NoError(t, err)

	store, err := Open(ctx, path, nil)
	require.NoError(t, err)
	store.now = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { _ = store.Close() })

	return store, db
}

func readModels(t *testing.T, db *sql.DB) map[string]map[string]any {
	t.Helper()
	var raw string
	require.NoError(t, db.QueryRow("SELECT models FROM col").Scan(&raw))
	models, err := decodeModels(raw)
	require.NoError(t, err)
	return models
}

func TestStore_AllOrdersByID(t *testing.T) {
	store, _ := setupCollection(t)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "1342697561418", all[0].ID)
	assert.Equal(t, "Basic", all[0].Name)
	assert.Equal(t, "1342697561419", all[1].ID)
	require.Len(t, all[1].Templates, 1)
	assert.Contains(t, all[1].Templates[0].Question, "{{type:Back}}")
	assert.Contains(t, all[1].Metadata, "css")
}

func TestStore_SavePatchesOnlyAnswer(t *testing.T) {
	ctx := context.Background()
	store, db := setupCollection(t)

	all, err := store.All(ctx)
	require.NoError(t, err)

	nt := all[1]
	annotated, changed := core.Annotate(nt.Templates[0].Question, nt.Templates[0].Answer)
	require.True(t, changed)
	nt.Templates[0].Answer = annotated
	nt.Templates[0].Question = "ignored"
	nt.Name = "ignored"
	require.NoError(t, store.Save(ctx, nt))

	models := readModels(t, db)
	model := models["1342697561419"]
	assert.Equal(t, "Basic (type in the answer)", model["name"])
	assert.Equal(t, json.Number("1700000000"), model["mod"])
	assert.Equal(t, json.Number("-1"), model["usn"])

	tmpl := model["tmpls"].([]any)[0].(map[string]any)
	assert.Equal(t, "{{Front}}\n\n{{type:Back}}", tmpl["qfmt"])
	assert.Contains(t, tmpl, "did")
	assert.True(t, marker.IsCanonicalOnly(tmpl["afmt"].(string)))

	untouched := models["1342697561418"]
	assert.Equal(t, json.Number("12"), untouched["usn"])

	var colMod int64
	require.NoError(t, db.QueryRow("SELECT mod FROM col").Scan(&colMod))
	assert.Equal(t, int64(1700000000000), colMod)
}

func TestStore_SaveUnknownID(t *testing.T) {
	store, _ := setupCollection(t)

	err := store.Save(context.Background(), core.NoteType{ID: "999"})
	assert.ErrorIs(t, err, ErrNoteTypeNotFound)
}

func TestStore_ScannerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := setupCollection(t)

	scanner := core.NewScanner(nil)
	report, err := scanner.Run(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	again, err := scanner.Run(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Changed)
}

func TestLessID(t *testing.T) {
	assert.True(t, lessID("9", "10"))
	assert.False(t, lessID("10", "9"))
	assert.True(t, lessID("a", "b"))
}
