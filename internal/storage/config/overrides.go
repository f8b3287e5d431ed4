package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mms/internal/domain"
)

// Override keep-files are line-oriented, one file per profile:
//
//	optional <branch>\t<name>
//	keep <branch>\t<name>
//
// The branch and filename are tab-separated since mod filenames may
// contain spaces. Blank lines and #-comments are skipped; anything else
// unknown is logged and ignored so a hand-edited file never breaks
// loading.

// LoadOverrides reads the override records for a profile. A missing
// file is a valid "no overrides yet" state and returns an empty set.
func LoadOverrides(configDir, profileName string, logger *slog.Logger) (domain.Overrides, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	overrides := make(domain.Overrides)

	path := overridesPath(configDir, profileName)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return overrides, nil
		}
		return nil, fmt.Errorf("opening overrides: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kind, rest, ok := strings.Cut(line, " ")
		if ok {
			branch, name, ok2 := strings.Cut(rest, "\t")
			if ok2 && branch != "" && name != "" {
				switch kind {
				case "optional":
					overrides.Branch(branch).SelectOptional(name)
					continue
				case "keep":
					overrides.Branch(branch).Keep(name)
					continue
				}
			}
		}
		logger.Warn("ignoring unknown overrides line", "file", path, "line", lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	return overrides, nil
}

// SaveOverrides persists a profile's override records, sorted for
// stable files, written temp-then-rename so a failed save cannot
// corrupt the previous state.
func SaveOverrides(configDir, profileName string, overrides domain.Overrides) error {
	var buf bytes.Buffer
	buf.WriteString("# mms overrides; one entry per line\n")

	branches := make([]string, 0, len(overrides))
	for branch := range overrides {
		branches = append(branches, branch)
	}
	sort.Strings(branches)

	for _, branch := range branches {
		rec := overrides[branch]
		for _, name := range sortedKeys(rec.OptionalsSelected) {
			fmt.Fprintf(&buf, "optional %s\t%s\n", branch, name)
		}
		for _, name := range sortedKeys(rec.KeepFlagged) {
			fmt.Fprintf(&buf, "keep %s\t%s\n", branch, name)
		}
	}

	dir := filepath.Join(configDir, "overrides")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating overrides dir: %w", err)
	}
	return writeFileAtomic(overridesPath(configDir, profileName), buf.Bytes())
}

func overridesPath(configDir, name string) string {
	return filepath.Join(configDir, "overrides", name+".keep")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
