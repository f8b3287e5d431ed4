package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// humanBytes formats a byte count for display (decimal units, matching
// what the server reports).
func humanBytes(n int64) string {
	const divider = 1000.0
	units := []string{"B", "KB", "MB", "GB", "TB"}

	v := float64(n)
	for _, unit := range units {
		if v < divider {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= divider
	}
	return fmt.Sprintf("%.2f PB", v)
}

// promptYesNo asks a yes/no question on out and reads the answer from
// in. Empty input means the default.
func promptYesNo(in io.Reader, out io.Writer, question string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s ", question, suffix)

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// splitList parses a comma-separated flag value into trimmed non-empty
// items.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
