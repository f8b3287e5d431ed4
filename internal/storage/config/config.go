package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig holds application-level settings, independent of profiles.
type AppConfig struct {
	LastProfile string `yaml:"last_profile"`
}

// Load reads the application settings from configDir. A missing file
// returns defaults.
func Load(configDir string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the application settings via a temp file so a failed
// write cannot corrupt the previous state.
func (c *AppConfig) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return writeFileAtomic(filepath.Join(configDir, "config.yaml"), data)
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
