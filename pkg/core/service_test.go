package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/typefield/pkg/core"
	"github.com/aretw0/typefield/pkg/marker"
)

type fixture struct {
	noteTypes *memNoteTypes
	media     *memMedia
	versions  *memVersions
	configs   *memConfigs
	notices   []string
	svc       *core.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		noteTypes: &memNoteTypes{noteTypes: sampleNoteTypes()},
		media:     newMemMedia(),
		versions:  &memVersions{},
		configs:   &memConfigs{dir: t.TempDir()},
	}
	f.svc = core.NewService(core.Dependencies{
		NoteTypes: f.noteTypes,
		Media:     f.media,
		Versions:  f.versions,
		Configs:   f.configs,
		Notifier:  core.NotifierFunc(func(msg string) { f.notices = append(f.notices, msg) }),
		Version:   "1.0.0",
		Asset:     core.Asset{Source: writeAsset(t, "asset-1.0.0"), Name: marker.AssetName},
	})
	return f
}

func TestService_OnSessionStart(t *testing.T) {
	ctx := context.Background()

	t.Run("First Session", func(t *testing.T) {
		f := newFixture(t)

		report, err := f.svc.OnSessionStart(ctx)
		require.NoError(t, err)

		assert.NotEmpty(t, report.SessionID)
		assert.True(t, report.Deployed)
		assert.True(t, report.ConfigPropagated)
		assert.Equal(t, []string{"Basic (type in the answer)", "Reversed"}, report.Scan.Mutated)
		assert.Equal(t, "asset-1.0.0", string(f.media.entries[marker.AssetName]))
		assert.Contains(t, f.media.entries, core.SnapshotName)
		assert.Equal(t, "1.0.0", f.versions.stored())
		assert.Empty(t, f.notices)
	})

	t.Run("Second Session Is Quiet", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.OnSessionStart(ctx)
		require.NoError(t, err)
		f.noteTypes.saves = nil

		report, err := f.svc.OnSessionStart(ctx)
		require.NoError(t, err)

		assert.False(t, report.Deployed)
		assert.Empty(t, report.Scan.Mutated)
		assert.Empty(t, f.noteTypes.saves)
	})

	t.Run("Deploy Failure Still Scans And Notifies Once", func(t *testing.T) {
		f := newFixture(t)
		f.versions.rec = &core.VersionRecord{Version: "0.9.0"}
		f.media.addErr = errors.New("disk full")

		report, err := f.svc.OnSessionStart(ctx)
		require.Error(t, err)

		assert.ErrorIs(t, err, core.ErrDeployFailed)
		assert.Equal(t, "0.9.0", f.versions.stored())
		assert.Len(t, report.Scan.Mutated, 2, "scan runs regardless of the gate")
		assert.Len(t, f.notices, 1)
	})

	t.Run("Retry On Next Session", func(t *testing.T) {
		f := newFixture(t)
		f.media.addErr = errors.New("disk full")
		_, err := f.svc.OnSessionStart(ctx)
		require.Error(t, err)
		assert.Empty(t, f.versions.stored())

		f.media.addErr = nil
		report, err := f.svc.OnSessionStart(ctx)
		require.NoError(t, err)
		assert.True(t, report.Deployed)
		assert.Equal(t, "1.0.0", f.versions.stored())
	})

	t.Run("Unreadable Version Slot Aborts The Pass", func(t *testing.T) {
		f := newFixture(t)
		f.versions.loadErr = errors.New("permission denied")

		report, err := f.svc.OnSessionStart(ctx)
		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
		assert.False(t, report.Deployed)
		assert.False(t, report.ConfigPropagated)
		assert.Empty(t, report.Scan.Mutated)
		assert.Empty(t, f.noteTypes.saves)
		assert.NotContains(t, f.media.entries, marker.AssetName)
		assert.Len(t, f.notices, 1)
	})

	t.Run("Store Unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.noteTypes.allErr = errors.New("collection locked")

		_, err := f.svc.OnSessionStart(ctx)
		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
		assert.Len(t, f.notices, 1)
	})
}

func TestService_Uninstall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.OnSessionStart(ctx)
	require.NoError(t, err)

	report, err := f.svc.Uninstall(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Basic (type in the answer)", "Reversed"}, report.Scan.Mutated)
	for _, nt := range f.noteTypes.noteTypes {
		for _, tmpl := range nt.Templates {
			assert.Zero(t, marker.Count(tmpl.Answer))
		}
	}
	assert.NotContains(t, f.media.entries, marker.AssetName)
	assert.NotContains(t, f.media.entries, core.SnapshotName)
	_, found, err := f.versions.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestService_Config(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cfg, err := f.svc.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultConfig(), cfg)

	cfg.IgnorePunctuations = true
	require.NoError(t, f.svc.SaveConfig(ctx, cfg))

	got, err := f.svc.Config(ctx)
	require.NoError(t, err)
	assert.True(t, got.IgnorePunctuations)
	assert.Contains(t, string(f.media.entries[core.SnapshotName]), `"ignore_punctuations":true`)
}

func TestService_Inspect(t *testing.T) {
	f := newFixture(t)

	statuses, err := f.svc.Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 4)
	assert.Equal(t, core.ActionInsert, statuses[1].Action)
	assert.Empty(t, f.noteTypes.saves)
}

func TestService_State(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.OnSessionStart(context.Background())
	require.NoError(t, err)

	state, ok := f.svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "1.0.0", state.CurrentVersion)
	assert.Equal(t, "note_type_store", state.NoteTypeStore)
	assert.Equal(t, "mem://media", state.MediaDir)
	require.NotNil(t, state.LastSession)
	assert.True(t, state.LastSession.Deployed)
	assert.Equal(t, "service", f.svc.ComponentType())
}
