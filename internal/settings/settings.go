// Package settings loads the command-line settings file.
//
// Lookup order: an explicit --config path, then ~/.config/typefield/config.toml,
// then ./typefield.toml. A missing file yields the defaults.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the per-user settings location before expansion.
const DefaultPath = "~/.config/typefield/config.toml"

// ProjectFile is looked up in the working directory when DefaultPath is absent.
const ProjectFile = "typefield.toml"

// Paths locates the profile and the add-on folder.
type Paths struct {
	ProfileDir  string `toml:"profile_dir"`
	AddonDir    string `toml:"addon_dir"`
	Collection  string `toml:"collection"`
	MediaDir    string `toml:"media_dir"`
	NoteTypeDir string `toml:"note_type_dir"`
}

// Logging configures the CLI's slog handler.
type Logging struct {
	Level  string `toml:"level"`  // debug, info, warn, error. Default: info
	Format string `toml:"format"` // text or json. Default: text
}

// Settings is the parsed settings file.
type Settings struct {
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// Default returns the settings used when no file is found.
func Default() Settings {
	return Settings{
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load locates and parses the settings file. It returns the resolved path and
// whether the file existed. Path fields are expanded and made absolute.
func Load(path string) (*Settings, string, bool, error) {
	s := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open settings: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&s); err != nil {
			return nil, "", false, fmt.Errorf("parse settings: %w", err)
		}
	}

	if err := s.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := s.Validate(); err != nil {
		return nil, "", false, err
	}
	return &s, resolved, exists, nil
}

// Validate rejects unknown logging values.
func (s *Settings) Validate() error {
	switch s.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", s.Logging.Format)
	}
	if _, err := parseLevel(s.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (s *Settings) Level() slog.Level {
	level, err := parseLevel(s.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func (s *Settings) normalize() error {
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
	s.Logging.Format = strings.ToLower(strings.TrimSpace(s.Logging.Format))
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = "text"
	}

	for _, field := range []*string{
		&s.Paths.ProfileDir,
		&s.Paths.AddonDir,
		&s.Paths.Collection,
		&s.Paths.MediaDir,
		&s.Paths.NoteTypeDir,
	} {
		expanded, err := ExpandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

func resolvePath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat settings: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := ExpandPath(DefaultPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(ProjectFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path.
// The empty string is returned unchanged.
func ExpandPath(value string) (string, error) {
	if value == "" {
		return value, nil
	}
	if strings.HasPrefix(value, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if value == "~" {
			value = home
		} else if len(value) > 1 && (value[1] == '/' || value[1] == '\\') {
			value = filepath.Join(home, value[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(value))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}
