// Package core holds the domain of typefield: note types and their card
// templates, the annotation rules that keep the marker tag in sync with the
// typed-answer directive, and the version gate that redeploys the script asset.
//
// Storage is reached only through the ports in repository.go.
package core

import "time"

// Metadata is the opaque remainder of a note type that adapters must round-trip.
type Metadata map[string]any

// CardTemplate is a question/answer rendering pair belonging to a note type.
type CardTemplate struct {
	Name     string
	Ord      int
	Question string
	Answer   string
	Metadata Metadata
}

// NoteType is a named schema holding an ordered list of card templates.
type NoteType struct {
	ID        string
	Name      string
	Templates []CardTemplate
	Metadata  Metadata
}

// VersionRecord is the release whose asset was last deployed successfully.
type VersionRecord struct {
	Version string
}

// Config holds the grading options read by the injected script.
// The core stores and propagates it but never interprets the flags.
type Config struct {
	Enabled            bool `json:"enabled" yaml:"enabled"`
	IgnoreCase         bool `json:"ignore_case" yaml:"ignore_case"`
	IgnoreAccents      bool `json:"ignore_accents" yaml:"ignore_accents"`
	IgnorePunctuations bool `json:"ignore_punctuations" yaml:"ignore_punctuations"`
	IgnoreExtraWords   bool `json:"ignore_extra_words" yaml:"ignore_extra_words"`
}

// DefaultConfig mirrors the fallback the script uses when no snapshot is found.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		IgnoreCase: true,
	}
}

// Action is what an annotation pass does to one template.
type Action string

const (
	ActionNone    Action = "none"
	ActionInsert  Action = "insert"
	ActionReplace Action = "replace"
	ActionRemove  Action = "remove"
)

// TemplateStatus describes one template as seen by a dry run.
type TemplateStatus struct {
	NoteTypeID string
	NoteType   string
	Template   string
	Ord        int
	Typed      bool
	Tags       int
	Action     Action
}

// ScanReport summarizes a pass over the whole collection.
type ScanReport struct {
	NoteTypes int      `json:"note_types"`
	Templates int      `json:"templates"`
	Changed   int      `json:"changed_templates"`
	Mutated   []string `json:"mutated_note_types,omitempty"`
}

// SessionReport summarizes one OnSessionStart or Uninstall call.
type SessionReport struct {
	SessionID        string        `json:"session_id"`
	CurrentVersion   string        `json:"current_version"`
	PreviousVersion  string        `json:"previous_version,omitempty"`
	Deployed         bool          `json:"deployed"`
	ConfigPropagated bool          `json:"config_propagated"`
	Scan             ScanReport    `json:"scan"`
	Duration         time.Duration `json:"duration"`
}
