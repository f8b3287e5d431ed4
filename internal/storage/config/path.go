// Package config persists profiles, per-profile overrides and the
// application settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigDir returns the directory for profiles and settings,
// honoring MMS_CONFIG_DIR for tests and unusual setups.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv("MMS_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, "mms"), nil
}

// DefaultDataDir returns the directory for the sync history database.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv("MMS_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "mms"), nil
}
