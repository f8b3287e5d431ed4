package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TransferProgress is a point-in-time snapshot of one unit's transfer.
type TransferProgress struct {
	Downloaded int64
	TotalBytes int64 // 0 if unknown
}

// ProgressFunc receives transfer progress snapshots.
type ProgressFunc func(TransferProgress)

// writeAtomic streams r into destPath via a temp file in the same
// directory, renaming only on success. On error or cancellation the temp
// file is removed, so no partially written file ever sits at the final
// path.
func writeAtomic(ctx context.Context, destPath string, r io.Reader, totalBytes int64, progressFn ProgressFunc) (written int64, err error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	tempPath := destPath + ".part"
	file, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		file.Close()
		os.Remove(tempPath) // No-op after a successful rename
	}()

	buf := make([]byte, 64*1024)
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("writing file: %w", werr)
			}
			written += int64(n)
			if progressFn != nil {
				progressFn(TransferProgress{Downloaded: written, TotalBytes: totalBytes})
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, fmt.Errorf("reading stream: %w", rerr)
		}
	}

	if err := file.Close(); err != nil {
		return written, fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return written, fmt.Errorf("renaming file: %w", err)
	}
	return written, nil
}
