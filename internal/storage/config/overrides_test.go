package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"mms/internal/domain"
	"mms/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrides_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	overrides := domain.Overrides{}
	overrides.Branch("main").SelectOptional("voicechat.jar")
	overrides.Branch("main").SelectOptional("minimap addon.jar")
	overrides.Branch("main").Keep("OptiFine.jar")
	overrides.Branch("snapshot").Keep("debug.jar")

	require.NoError(t, config.SaveOverrides(dir, "smp", overrides))

	loaded, err := config.LoadOverrides(dir, "smp", nil)
	require.NoError(t, err)

	assert.True(t, loaded.Branch("main").IsSelected("voicechat.jar"))
	assert.True(t, loaded.Branch("main").IsSelected("minimap addon.jar"))
	assert.True(t, loaded.Branch("main").IsKept("OptiFine.jar"))
	assert.True(t, loaded.Branch("snapshot").IsKept("debug.jar"))
	assert.False(t, loaded.Branch("snapshot").IsSelected("voicechat.jar"))
}

func TestLoadOverrides_MissingFileIsEmpty(t *testing.T) {
	loaded, err := config.LoadOverrides(t.TempDir(), "fresh", nil)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadOverrides_SkipsCommentsAndJunk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides", "smp.keep")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := "# a comment\n" +
		"\n" +
		"optional main\tgood.jar\n" +
		"garbage line without structure\n" +
		"frobnicate main\tweird.jar\n" +
		"keep main\tkept.jar\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := config.LoadOverrides(dir, "smp", nil)
	require.NoError(t, err)

	assert.True(t, loaded.Branch("main").IsSelected("good.jar"))
	assert.True(t, loaded.Branch("main").IsKept("kept.jar"))
	assert.False(t, loaded.Branch("main").IsSelected("weird.jar"))
}

func TestSaveOverrides_StableOutput(t *testing.T) {
	dir := t.TempDir()

	overrides := domain.Overrides{}
	overrides.Branch("main").SelectOptional("z.jar")
	overrides.Branch("main").SelectOptional("a.jar")
	require.NoError(t, config.SaveOverrides(dir, "smp", overrides))
	first, err := os.ReadFile(filepath.Join(dir, "overrides", "smp.keep"))
	require.NoError(t, err)

	require.NoError(t, config.SaveOverrides(dir, "smp", overrides))
	second, err := os.ReadFile(filepath.Join(dir, "overrides", "smp.keep"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "optional main\ta.jar\n")
}

func TestSaveOverrides_OverwritesPreviousState(t *testing.T) {
	dir := t.TempDir()

	overrides := domain.Overrides{}
	overrides.Branch("main").SelectOptional("old.jar")
	require.NoError(t, config.SaveOverrides(dir, "smp", overrides))

	overrides.Branch("main").UnselectOptional("old.jar")
	overrides.Branch("main").SelectOptional("new.jar")
	require.NoError(t, config.SaveOverrides(dir, "smp", overrides))

	loaded, err := config.LoadOverrides(dir, "smp", nil)
	require.NoError(t, err)
	assert.False(t, loaded.Branch("main").IsSelected("old.jar"))
	assert.True(t, loaded.Branch("main").IsSelected("new.jar"))
}
