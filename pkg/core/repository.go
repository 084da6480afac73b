package core

import "context"

// NoteTypeStore is the host collection's note-type storage.
// Adhering to this interface keeps the core independent of the underlying
// storage (an Anki collection file, a directory of exported note types, memory).
type NoteTypeStore interface {
	// All returns every note type in a stable order.
	All(ctx context.Context) ([]NoteType, error)

	// Save persists one note type. It must be idempotent and must not
	// rearrange fields the core does not own.
	Save(ctx context.Context, nt NoteType) error
}

// MediaStore is the host's media folder.
type MediaStore interface {
	// Dir returns the location of the media folder.
	Dir() string

	// Has reports whether an entry with the given name exists.
	Has(ctx context.Context, name string) (bool, error)

	// Add copies the file at path into the store under name.
	Add(ctx context.Context, path, name string) error

	// Remove deletes the entry with the given name.
	Remove(ctx context.Context, name string) error
}

// MediaLister is implemented by media stores that can enumerate their entries.
type MediaLister interface {
	List(ctx context.Context) ([]string, error)
}

// VersionStore is the single slot holding the last deployed release.
type VersionStore interface {
	// Load returns the stored record. found is false on first run.
	Load(ctx context.Context) (rec VersionRecord, found bool, err error)

	// Save overwrites the slot.
	Save(ctx context.Context, rec VersionRecord) error

	// Clear empties the slot so the next session redeploys.
	Clear(ctx context.Context) error
}

// ConfigStore persists the grading options.
type ConfigStore interface {
	// Load returns the stored config, or DefaultConfig when none was saved.
	Load(ctx context.Context) (Config, error)

	// Save persists cfg.
	Save(ctx context.Context, cfg Config) error

	// WriteSnapshot renders cfg as the JSON file the script fetches and
	// returns the path of the rendered file.
	WriteSnapshot(ctx context.Context, cfg Config) (string, error)
}

// Notifier shows a single informational notice to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify calls f(msg).
func (f NotifierFunc) Notify(msg string) { f(msg) }
