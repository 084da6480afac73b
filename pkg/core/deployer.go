package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// AssetDeployer installs a file into the media store under a fixed name.
type AssetDeployer interface {
	Deploy(ctx context.Context, sourcePath, targetName string) error
}

// Deployer replaces media entries by deleting and re-copying them, so the
// stored bytes always match the current release even after manual edits.
// There is no atomic swap: a failure after the delete leaves the entry absent.
type Deployer struct {
	Media  MediaStore
	Logger *slog.Logger
}

// NewDeployer creates a Deployer over media. A nil logger discards output.
func NewDeployer(media MediaStore, logger *slog.Logger) *Deployer {
	return &Deployer{Media: media, Logger: orDiscard(logger)}
}

// Deploy copies sourcePath into the media store as targetName.
func (d *Deployer) Deploy(ctx context.Context, sourcePath, targetName string) error {
	// A missing source must not cost us the copy that is already installed.
	if _, err := os.Stat(sourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w: %s", ErrDeployFailed, ErrAssetMissing, sourcePath)
		}
		return fmt.Errorf("%w: stat %s: %w", ErrDeployFailed, sourcePath, err)
	}

	exists, err := d.Media.Has(ctx, targetName)
	if err != nil {
		return fmt.Errorf("%w: lookup %s: %w", ErrStoreUnavailable, targetName, err)
	}

	if exists {
		d.Logger.Debug("removing existing media entry", "name", targetName, "dir", d.Media.Dir())
		if err := d.Media.Remove(ctx, targetName); err != nil {
			return fmt.Errorf("%w: remove %s: %w", ErrDeployFailed, targetName, err)
		}
	}

	if err := d.Media.Add(ctx, sourcePath, targetName); err != nil {
		return fmt.Errorf("%w: add %s: %w", ErrDeployFailed, targetName, err)
	}

	d.Logger.Info("asset deployed", "name", targetName, "source", sourcePath, "replaced", exists)
	return nil
}
