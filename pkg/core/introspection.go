package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	CurrentVersion string         `json:"current_version"`
	Asset          string         `json:"asset"`
	AssetSource    string         `json:"asset_source"`
	MediaDir       string         `json:"media_dir"`
	NoteTypeStore  string         `json:"note_type_store"`
	Stores         map[string]any `json:"stores,omitempty"`
	LastSession    *SessionReport `json:"last_session,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeType := "unknown"
	if s.deps.NoteTypes != nil {
		storeType = "note_type_store"
		if comp, ok := s.deps.NoteTypes.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	mediaDir := ""
	if s.deps.Media != nil {
		mediaDir = s.deps.Media.Dir()
	}

	stores := make(map[string]any)
	for name, port := range map[string]any{
		"note_types": s.deps.NoteTypes,
		"media":      s.deps.Media,
		"versions":   s.deps.Versions,
		"configs":    s.deps.Configs,
	} {
		if in, ok := port.(introspection.Introspectable); ok {
			stores[name] = in.State()
		}
	}

	return ServiceState{
		CurrentVersion: s.deps.Version,
		Asset:          s.deps.Asset.Name,
		AssetSource:    s.deps.Asset.Source,
		MediaDir:       mediaDir,
		NoteTypeStore:  storeType,
		Stores:         stores,
		LastSession:    s.last,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
