package core_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/typefield/pkg/core"
)

func TestDeployer_Deploy(t *testing.T) {
	ctx := context.Background()
	const name = "_smarterTypeField.min.js"

	t.Run("Fresh Install Copies", func(t *testing.T) {
		media := newMemMedia()
		src := writeAsset(t, "v1")

		require.NoError(t, core.NewDeployer(media, nil).Deploy(ctx, src, name))

		assert.Equal(t, []string{"add " + name}, media.ops)
		assert.Equal(t, "v1", string(media.entries[name]))
	})

	t.Run("Existing Entry Is Deleted Then Copied", func(t *testing.T) {
		media := newMemMedia()
		media.entries[name] = []byte("edited by hand")
		src := writeAsset(t, "v2")

		require.NoError(t, core.NewDeployer(media, nil).Deploy(ctx, src, name))

		assert.Equal(t, []string{"remove " + name, "add " + name}, media.ops)
		assert.Equal(t, "v2", string(media.entries[name]))
	})

	t.Run("Missing Source Keeps Installed Copy", func(t *testing.T) {
		media := newMemMedia()
		media.entries[name] = []byte("v1")

		err := core.NewDeployer(media, nil).Deploy(ctx, filepath.Join(t.TempDir(), "nope.js"), name)

		assert.ErrorIs(t, err, core.ErrDeployFailed)
		assert.ErrorIs(t, err, core.ErrAssetMissing)
		assert.Empty(t, media.ops)
		assert.Equal(t, "v1", string(media.entries[name]))
	})

	t.Run("Copy Failure", func(t *testing.T) {
		media := newMemMedia()
		media.entries[name] = []byte("v1")
		media.addErr = errors.New("disk full")

		err := core.NewDeployer(media, nil).Deploy(ctx, writeAsset(t, "v2"), name)

		assert.ErrorIs(t, err, core.ErrDeployFailed)
		// No rollback: the old copy is gone.
		_, ok := media.entries[name]
		assert.False(t, ok)
	})

	t.Run("Unreachable Store", func(t *testing.T) {
		media := newMemMedia()
		media.hasErr = errors.New("media folder unmounted")

		err := core.NewDeployer(media, nil).Deploy(ctx, writeAsset(t, "v1"), name)

		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
		assert.Empty(t, media.ops)
	})
}
