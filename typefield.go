package typefield

import (
	"context"
	"log/slog"

	"github.com/aretw0/typefield/internal/platform"
	"github.com/aretw0/typefield/pkg/core"
)

// --- Types ---

// Instance is a wired Service together with the resources it holds open.
type Instance = platform.Instance

// Layout is where an Instance reads and writes.
type Layout = platform.Layout

// Config holds the grading options read by the injected script.
type Config = core.Config

// SessionReport summarizes one session-start pass.
type SessionReport = core.SessionReport

// --- Configuration ---

// Option defines a functional option for configuring typefield.
type Option = platform.Option

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithNotifier sets where session failures are reported.
func WithNotifier(n core.Notifier) Option {
	return platform.WithNotifier(n)
}

// WithVersion overrides the running release. Defaults to Version.
func WithVersion(version string) Option {
	return platform.WithVersion(version)
}

// WithAddonDir sets the folder holding the shipped asset, VERSION and config.json.
func WithAddonDir(dir string) Option {
	return platform.WithAddonDir(dir)
}

// WithMediaDir overrides the profile's media folder.
func WithMediaDir(dir string) Option {
	return platform.WithMediaDir(dir)
}

// WithCollection overrides the profile's collection database.
func WithCollection(path string) Option {
	return platform.WithCollection(path)
}

// WithNoteTypeDir reads note types from a directory of exported documents.
func WithNoteTypeDir(dir string) Option {
	return platform.WithNoteTypeDir(dir)
}

// WithConfigFile overrides the add-on's config.json.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// WithAssetName overrides the media name the script is deployed under.
func WithAssetName(name string) Option {
	return platform.WithAssetName(name)
}

// WithNoteTypeStore injects a custom note-type adapter.
func WithNoteTypeStore(store core.NoteTypeStore) Option {
	return platform.WithNoteTypeStore(store)
}

// WithMediaStore injects a custom media adapter.
func WithMediaStore(store core.MediaStore) Option {
	return platform.WithMediaStore(store)
}

// WithVersionStore injects a custom version slot.
func WithVersionStore(store core.VersionStore) Option {
	return platform.WithVersionStore(store)
}

// WithConfigStore injects a custom config adapter.
func WithConfigStore(store core.ConfigStore) Option {
	return platform.WithConfigStore(store)
}

// WithLock controls the exclusive profile lock.
func WithLock(enabled bool) Option {
	return platform.WithLock(enabled)
}

// WithDevSafety controls the temporary sandbox used under `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// Open wires a Service over the profile at profileDir.
// The caller must Close the returned Instance.
func Open(ctx context.Context, profileDir string, opts ...Option) (*Instance, error) {
	return platform.Open(ctx, profileDir, append([]Option{platform.WithVersion(Version)}, opts...)...)
}

// --- Utils ---

// FindProfile looks upwards from startDir for a profile folder.
func FindProfile(startDir string) (string, error) {
	return platform.FindProfile(startDir)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
