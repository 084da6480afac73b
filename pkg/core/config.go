package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// SnapshotName is the media entry the script fetches its options from on
	// clients where the host glue does not run.
	SnapshotName = "_smarterTypeField.config.json"

	// legacySnapshotGlob matches the cache-busting, timestamped snapshots of
	// earlier releases.
	legacySnapshotGlob = "_smarterTypeField.config*.json"
)

// ConfigPropagator publishes the grading options into the media store.
type ConfigPropagator struct {
	Configs  ConfigStore
	Deployer AssetDeployer
	Media    MediaStore
	Logger   *slog.Logger
}

// Propagate renders cfg as a snapshot, deploys it, and removes stale
// timestamped snapshots when the media store can list its entries.
func (p *ConfigPropagator) Propagate(ctx context.Context, cfg Config) error {
	logger := orDiscard(p.Logger)

	path, err := p.Configs.WriteSnapshot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: write config snapshot: %w", ErrStoreUnavailable, err)
	}

	if err := p.Deployer.Deploy(ctx, path, SnapshotName); err != nil {
		return err
	}

	lister, ok := p.Media.(MediaLister)
	if !ok {
		return nil
	}

	names, err := lister.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: list media: %w", ErrStoreUnavailable, err)
	}

	for _, name := range names {
		if name == SnapshotName {
			continue
		}
		if match, _ := doublestar.Match(legacySnapshotGlob, name); !match {
			continue
		}
		if err := p.Media.Remove(ctx, name); err != nil {
			return fmt.Errorf("%w: remove stale snapshot %s: %w", ErrStoreUnavailable, name, err)
		}
		logger.Debug("stale config snapshot removed", "name", name)
	}

	return nil
}
