package platform

import (
	"log/slog"

	"github.com/aretw0/typefield/pkg/core"
)

// options holds the internal configuration for a typefield instance.
type options struct {
	logger   *slog.Logger
	notifier core.Notifier
	version  string

	addonDir    string
	mediaDir    string
	collection  string
	noteTypeDir string
	configFile  string
	assetName   string

	noteTypes core.NoteTypeStore
	media     core.MediaStore
	versions  core.VersionStore
	configs   core.ConfigStore

	lock      bool
	devSafety bool
}

// Option defines a functional option for configuring typefield.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		lock:      true,
		devSafety: true,
	}
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNotifier sets where session failures are reported.
func WithNotifier(n core.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithVersion overrides the running release compared by the version gate.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithAddonDir sets the folder holding the shipped asset, VERSION and config.json.
func WithAddonDir(dir string) Option {
	return func(o *options) {
		o.addonDir = dir
	}
}

// WithMediaDir overrides <profile>/collection.media.
func WithMediaDir(dir string) Option {
	return func(o *options) {
		o.mediaDir = dir
	}
}

// WithCollection overrides <profile>/collection.anki2.
func WithCollection(path string) Option {
	return func(o *options) {
		o.collection = path
	}
}

// WithNoteTypeDir reads note types from a directory of exported documents
// instead of the collection database.
func WithNoteTypeDir(dir string) Option {
	return func(o *options) {
		o.noteTypeDir = dir
	}
}

// WithConfigFile overrides <addon>/config.json. A .yaml or .yml extension
// switches the format.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithAssetName overrides the media name the script is deployed under.
func WithAssetName(name string) Option {
	return func(o *options) {
		o.assetName = name
	}
}

// WithNoteTypeStore injects a custom note-type adapter.
// If provided, neither the collection nor a note-type directory is opened.
func WithNoteTypeStore(store core.NoteTypeStore) Option {
	return func(o *options) {
		o.noteTypes = store
	}
}

// WithMediaStore injects a custom media adapter.
func WithMediaStore(store core.MediaStore) Option {
	return func(o *options) {
		o.media = store
	}
}

// WithVersionStore injects a custom version slot.
func WithVersionStore(store core.VersionStore) Option {
	return func(o *options) {
		o.versions = store
	}
}

// WithConfigStore injects a custom config adapter.
func WithConfigStore(store core.ConfigStore) Option {
	return func(o *options) {
		o.configs = store
	}
}

// WithLock controls the exclusive profile lock. Enabled by default.
func WithLock(enabled bool) Option {
	return func(o *options) {
		o.lock = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true), the profile is re-rooted into a temporary directory so a
// development build never rewrites a real collection.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
