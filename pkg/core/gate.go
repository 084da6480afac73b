package core

import (
	"context"
	"fmt"
	"log/slog"
)

// Asset is the shipped script file and the name it takes in the media store.
type Asset struct {
	Source string
	Name   string
}

// GateResult describes what a version check found and did.
type GateResult struct {
	Previous string
	Found    bool
	Deployed bool
}

// Gate redeploys the asset whenever the stored version differs from the
// running release. Only equality is checked, so downgrades redeploy too.
type Gate struct {
	Current  string
	Versions VersionStore
	Deployer AssetDeployer
	Asset    Asset
	Logger   *slog.Logger
}

// CheckAndMaybeDeploy deploys the asset when the stored version is absent or
// stale, and records the current version only after the deploy succeeded.
func (g *Gate) CheckAndMaybeDeploy(ctx context.Context) (GateResult, error) {
	logger := orDiscard(g.Logger)

	rec, found, err := g.Versions.Load(ctx)
	if err != nil {
		return GateResult{}, fmt.Errorf("%w: load version: %w", ErrStoreUnavailable, err)
	}

	res := GateResult{Previous: rec.Version, Found: found}
	if found && rec.Version == g.Current {
		logger.Debug("asset up to date", "version", g.Current)
		return res, nil
	}

	logger.Info("asset version mismatch", "stored", rec.Version, "found", found, "current", g.Current)

	if err := g.Deployer.Deploy(ctx, g.Asset.Source, g.Asset.Name); err != nil {
		return res, err
	}
	res.Deployed = true

	if err := g.Versions.Save(ctx, VersionRecord{Version: g.Current}); err != nil {
		// The asset is in place; the next session redeploys it and retries the write.
		return res, fmt.Errorf("%w: save version: %w", ErrStoreUnavailable, err)
	}

	return res, nil
}
