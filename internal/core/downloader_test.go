package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.jar")

	var last TransferProgress
	n, err := writeAtomic(context.Background(), dest, strings.NewReader("payload"), 7,
		func(p TransferProgress) { last = p })
	require.NoError(t, err)

	assert.Equal(t, int64(7), n)
	assert.Equal(t, int64(7), last.Downloaded)
	assert.Equal(t, int64(7), last.TotalBytes)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	// No leftover temp file.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomic_CreatesParentDirs(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "deeper", "out.jar")

	_, err := writeAtomic(context.Background(), dest, strings.NewReader("x"), 1, nil)
	require.NoError(t, err)
	assert.FileExists(t, dest)
}

func TestWriteAtomic_CancelledBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.jar")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := writeAtomic(ctx, dest, strings.NewReader("payload"), 7, nil)
	require.ErrorIs(t, err, context.Canceled)

	assert.NoFileExists(t, dest)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteAtomic_ReplacesExistingFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.jar")
	require.NoError(t, os.WriteFile(dest, []byte("old contents"), 0o644))

	_, err := writeAtomic(context.Background(), dest, strings.NewReader("new"), 3, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
