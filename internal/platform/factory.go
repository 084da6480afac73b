package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/aretw0/typefield/pkg/adapters/fs"
	"github.com/aretw0/typefield/pkg/adapters/sqlite"
	"github.com/aretw0/typefield/pkg/core"
	"github.com/aretw0/typefield/pkg/marker"
)

// DevVersion is reported when no release version was provided.
const DevVersion = "0.0.0-dev"

// Layout is where an instance reads and writes, after defaults and overrides.
type Layout struct {
	Profile     string
	Addon       string
	Media       string
	Collection  string
	NoteTypeDir string
	ConfigFile  string
	VersionFile string
	Asset       core.Asset
}

// Instance is a wired Service together with the resources it holds open.
type Instance struct {
	Service *core.Service
	Layout  Layout

	lock    *flock.Flock
	closers []func() error
}

// Close releases the stores and the profile lock.
func (i *Instance) Close() error {
	var errs []error
	for j := len(i.closers) - 1; j >= 0; j-- {
		errs = append(errs, i.closers[j]())
	}
	i.closers = nil
	if i.lock != nil {
		errs = append(errs, i.lock.Unlock())
		i.lock = nil
	}
	return errors.Join(errs...)
}

// Open wires a Service over the profile at profileDir.
//
//	inst, err := platform.Open(ctx, "~/.local/share/Anki2/User 1",
//		platform.WithAddonDir(addon),
//		platform.WithLogger(logger),
//	)
func Open(ctx context.Context, profileDir string, opts ...Option) (*Instance, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	layout, err := resolveLayout(profileDir, o)
	if err != nil {
		return nil, err
	}

	inst := &Instance{Layout: layout}
	if o.lock {
		lock, err := AcquireLock(layout.Profile)
		if err != nil {
			return nil, err
		}
		inst.lock = lock
	}

	svc, err := wire(ctx, inst, o)
	if err != nil {
		_ = inst.Close()
		return nil, err
	}
	inst.Service = svc
	return inst, nil
}

func resolveLayout(profileDir string, o *options) (Layout, error) {
	useTemp := o.devSafety && IsDevRun()
	profile := ResolveProfilePath(profileDir, useTemp)
	if useTemp && o.logger != nil {
		o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "original_path", profileDir, "resolved_path", profile)
	}

	addon := o.addonDir
	if addon == "" {
		exe, err := os.Executable()
		if err != nil {
			return Layout{}, fmt.Errorf("resolve add-on directory: %w", err)
		}
		addon = filepath.Dir(exe)
	}

	layout := Layout{
		Profile:     profile,
		Addon:       addon,
		Media:       firstNonEmpty(o.mediaDir, filepath.Join(profile, MediaDir)),
		Collection:  firstNonEmpty(o.collection, filepath.Join(profile, CollectionFile)),
		NoteTypeDir: o.noteTypeDir,
		ConfigFile:  firstNonEmpty(o.configFile, filepath.Join(addon, fs.ConfigFile)),
		VersionFile: filepath.Join(addon, fs.VersionFile),
	}
	name := firstNonEmpty(o.assetName, marker.AssetName)
	layout.Asset = core.Asset{Source: filepath.Join(addon, name), Name: name}
	return layout, nil
}

func wire(ctx context.Context, inst *Instance, o *options) (*core.Service, error) {
	layout := inst.Layout

	noteTypes := o.noteTypes
	switch {
	case noteTypes != nil:
	case layout.NoteTypeDir != "":
		noteTypes = fs.NewNoteTypeStore(layout.NoteTypeDir, o.logger)
	default:
		if _, err := os.Stat(layout.Collection); err != nil {
			return nil, fmt.Errorf("%w: collection: %w", core.ErrStoreUnavailable, err)
		}
		store, err := sqlite.Open(ctx, layout.Collection, o.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
		inst.closers = append(inst.closers, store.Close)
		noteTypes = store
	}

	media := o.media
	if media == nil {
		store := fs.NewMediaStore(layout.Media, o.logger)
		if err := store.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
		media = store
	}

	versions := o.versions
	if versions == nil {
		versions = fs.NewVersionStore(layout.VersionFile)
	}

	configs := o.configs
	if configs == nil {
		configs = fs.NewConfigStore(layout.ConfigFile)
	}

	return core.NewService(core.Dependencies{
		NoteTypes: noteTypes,
		Media:     media,
		Versions:  versions,
		Configs:   configs,
		Notifier:  o.notifier,
		Logger:    o.logger,
		Version:   firstNonEmpty(o.version, DevVersion),
		Asset:     layout.Asset,
	}), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
