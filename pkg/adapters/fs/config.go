package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/typefield/pkg/core"
)

// ConfigFile is the default name of the grading options file in the add-on folder.
const ConfigFile = "config.json"

// ConfigStore implements core.ConfigStore as a JSON or YAML file, chosen by extension.
// The snapshot handed to the media store is always JSON, since the script fetches it.
type ConfigStore struct {
	Path string
}

// NewConfigStore creates a config store at path.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{Path: path}
}

// Load reads the options. Keys absent from the file keep their defaults.
func (c *ConfigStore) Load(ctx context.Context) (core.Config, error) {
	cfg := core.DefaultConfig()

	data, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	if c.isYAML() {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid yaml in %s: %w", c.Path, err)
		}
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid json in %s: %w", c.Path, err)
	}
	return cfg, nil
}

// Save writes the options atomically in the file's format.
func (c *ConfigStore) Save(ctx context.Context, cfg core.Config) error {
	var (
		data []byte
		err  error
	)
	if c.isYAML() {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	return writeFileAtomic(c.Path, data, 0644)
}

// SnapshotPath is where WriteSnapshot renders the JSON snapshot.
func (c *ConfigStore) SnapshotPath() string {
	return filepath.Join(filepath.Dir(c.Path), core.SnapshotName)
}

// WriteSnapshot renders cfg as JSON next to the config file.
func (c *ConfigStore) WriteSnapshot(ctx context.Context, cfg core.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	path := c.SnapshotPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (c *ConfigStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(c.Path))
	return ext == ".yaml" || ext == ".yml"
}

var _ core.ConfigStore = (*ConfigStore)(nil)
