package core_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"mms/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, dir string, members map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "branch.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractSelected_OnlyWantedMembers(t *testing.T) {
	tmp := t.TempDir()
	archive := writeZip(t, tmp, map[string][]byte{
		"a.jar":     []byte("alpha"),
		"b.jar":     []byte("bravo"),
		"other.jar": []byte("skip me"),
	})

	dest := filepath.Join(tmp, "mods")
	var names []string
	err := core.ExtractSelected(context.Background(), archive, dest, []string{"a.jar", "b.jar"},
		func(name string, extracted int64) { names = append(names, name) })
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.jar", "b.jar"}, names)

	got, err := os.ReadFile(filepath.Join(dest, "a.jar"))
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)
	assert.NoFileExists(t, filepath.Join(dest, "other.jar"))
}

func TestExtractSelected_FlattensMemberPaths(t *testing.T) {
	tmp := t.TempDir()
	archive := writeZip(t, tmp, map[string][]byte{
		"mods/nested/a.jar": []byte("alpha"),
	})

	dest := filepath.Join(tmp, "mods")
	err := core.ExtractSelected(context.Background(), archive, dest, []string{"a.jar"}, nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dest, "a.jar"))
	assert.NoDirExists(t, filepath.Join(dest, "mods"))
}

func TestExtractSelected_ReportsPerMemberBytes(t *testing.T) {
	tmp := t.TempDir()
	archive := writeZip(t, tmp, map[string][]byte{
		"a.jar": []byte("12345"),
		"b.jar": []byte("123"),
	})

	dest := filepath.Join(tmp, "mods")
	sizes := make(map[string]int64)
	err := core.ExtractSelected(context.Background(), archive, dest, []string{"a.jar", "b.jar"},
		func(name string, memberBytes int64) { sizes[name] = memberBytes })
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"a.jar": 5, "b.jar": 3}, sizes)
}

func TestExtractSelected_CancelledContext(t *testing.T) {
	tmp := t.TempDir()
	archive := writeZip(t, tmp, map[string][]byte{"a.jar": []byte("alpha")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(tmp, "mods")
	err := core.ExtractSelected(ctx, archive, dest, []string{"a.jar"}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dest, "a.jar"))
}

func TestExtractSelected_MissingArchive(t *testing.T) {
	err := core.ExtractSelected(context.Background(),
		filepath.Join(t.TempDir(), "nope.zip"), t.TempDir(), nil, nil)
	assert.Error(t, err)
}
