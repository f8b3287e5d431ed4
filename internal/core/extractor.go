package core

import (
	"archive/zip"
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ExtractFunc is called once per extracted member with its name and its
// own byte count.
type ExtractFunc func(name string, memberBytes int64)

// ExtractSelected extracts the named members of a branch zip archive
// into destDir. Members not in wanted are skipped: the bulk archive
// covers the whole branch, but only the files the plan selected belong
// in the mods directory. Each member is written via a temp file so
// cancellation leaves no partial file at a final path.
func ExtractSelected(ctx context.Context, archivePath, destDir string, wanted []string, extractFn ExtractFunc) (err error) {
	want := make(map[string]struct{}, len(wanted))
	for _, name := range wanted {
		want[name] = struct{}{}
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive: %w", cerr)
		}
	}()

	for _, f := range r.File {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(filepath.Clean(f.Name))
		if _, ok := want[name]; !ok {
			continue
		}
		// Flat layout: archive member paths are untrusted, only the
		// basename is used under destDir.
		if strings.Contains(name, "..") {
			return fmt.Errorf("suspicious archive member path: %q", f.Name)
		}

		n, err := extractMember(ctx, f, filepath.Join(destDir, name))
		if err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}
		if extractFn != nil {
			extractFn(name, n)
		}
	}
	return nil
}

func extractMember(ctx context.Context, f *zip.File, destPath string) (written int64, err error) {
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("opening member: %w", err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing member: %w", cerr)
		}
	}()

	return writeAtomic(ctx, destPath, rc, int64(f.UncompressedSize64), nil)
}
