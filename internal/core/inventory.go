package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mms/internal/domain"
)

// ScanInventory enumerates the mod files present in dir. Only regular
// .jar files count (case-insensitive); subdirectories and other files
// are ignored. The result is sorted by filename.
func ScanInventory(dir string) ([]domain.LocalFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, domain.ErrInvalidModsPath)
		}
		return nil, fmt.Errorf("reading mods directory: %w", err)
	}

	var files []domain.LocalFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".jar") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File disappeared between ReadDir and Stat; skip it.
			continue
		}
		files = append(files, domain.LocalFile{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ValidateModsPath checks that path exists, is a directory, and is named
// "mods". The naming check guards against pointing the syncer at a
// directory it would then prune.
func ValidateModsPath(path string) error {
	if filepath.Base(filepath.Clean(path)) != "mods" {
		return fmt.Errorf("%s: %w", path, domain.ErrInvalidModsPath)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, domain.ErrInvalidModsPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, domain.ErrInvalidModsPath)
	}
	return nil
}

// DefaultModsPath returns the conventional launcher mods directory for
// the current user, or empty when it cannot be determined. Existence is
// not checked.
func DefaultModsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".minecraft", "mods")
}
