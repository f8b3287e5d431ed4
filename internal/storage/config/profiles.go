package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mms/internal/domain"

	"gopkg.in/yaml.v3"
)

// ProfileConfig is the YAML representation of a profile.
type ProfileConfig struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	ModsPath string `yaml:"mods_path"`
	Branch   string `yaml:"branch"`
}

// LoadProfile reads one profile from disk.
func LoadProfile(configDir, name string) (*domain.Profile, error) {
	data, err := os.ReadFile(profilePath(configDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var cfg ProfileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", name, err)
	}

	return &domain.Profile{
		Name:     cfg.Name,
		Address:  cfg.Address,
		ModsPath: cfg.ModsPath,
		Branch:   cfg.Branch,
	}, nil
}

// SaveProfile writes a profile to disk via temp-then-rename.
func SaveProfile(configDir string, profile *domain.Profile) error {
	cfg := ProfileConfig{
		Name:     profile.Name,
		Address:  profile.Address,
		ModsPath: profile.ModsPath,
		Branch:   profile.Branch,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}

	dir := filepath.Join(configDir, "profiles")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating profiles dir: %w", err)
	}
	return writeFileAtomic(profilePath(configDir, profile.Name), data)
}

// ListProfiles returns the names of all stored profiles, sorted. A
// profile file that fails to parse is still listed: one corrupt record
// only fails its own activation.
func ListProfiles(configDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(configDir, "profiles"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profiles dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteProfile removes a profile and its override keep-file.
func DeleteProfile(configDir, name string) error {
	if err := os.Remove(profilePath(configDir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, domain.ErrProfileNotFound)
		}
		return fmt.Errorf("deleting profile: %w", err)
	}
	// The keep-file is meaningless without its profile.
	if err := os.Remove(overridesPath(configDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting overrides: %w", err)
	}
	return nil
}

func profilePath(configDir, name string) string {
	return filepath.Join(configDir, "profiles", name+".yaml")
}
