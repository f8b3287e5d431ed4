package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"mms/internal/storage/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleRun(profile string, startedAt time.Time) db.SyncRun {
	return db.SyncRun{
		ProfileName: profile,
		Branch:      "main",
		Strategy:    "per-file",
		DownloadsOK: 3,
		DeletesOK:   1,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(time.Minute),
	}
}

func TestRecordRunAndRecentRuns(t *testing.T) {
	database := openTestDB(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	_, err := database.RecordRun(sampleRun("smp", base), nil)
	require.NoError(t, err)
	_, err = database.RecordRun(sampleRun("smp", base.Add(time.Hour)), nil)
	require.NoError(t, err)
	_, err = database.RecordRun(sampleRun("creative", base.Add(2*time.Hour)), nil)
	require.NoError(t, err)

	runs, err := database.RecentRuns("", 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "creative", runs[0].ProfileName)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))

	runs, err = database.RecentRuns("smp", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, "smp", run.ProfileName)
	}

	runs, err = database.RecentRuns("", 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordRun_WithFailures(t *testing.T) {
	database := openTestDB(t)

	run := sampleRun("smp", time.Now())
	run.DownloadsFailed = 2
	failures := []db.UnitFailure{
		{Unit: "a.jar", Kind: "download", Reason: "HTTP error: 500"},
		{Unit: "b.jar", Kind: "download", Reason: "connection reset"},
	}

	id, err := database.RecordRun(run, failures)
	require.NoError(t, err)

	got, err := database.RunFailures(id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.jar", got[0].Unit)
	assert.Equal(t, "connection reset", got[1].Reason)
}

func TestRecentRuns_PreservesFields(t *testing.T) {
	database := openTestDB(t)

	run := sampleRun("smp", time.Date(2026, 8, 10, 8, 30, 0, 0, time.UTC))
	run.Strategy = "bulk"
	run.Cancelled = true
	run.DeletesFailed = 1

	_, err := database.RecordRun(run, nil)
	require.NoError(t, err)

	runs, err := database.RecentRuns("smp", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "bulk", got.Strategy)
	assert.True(t, got.Cancelled)
	assert.Equal(t, 3, got.DownloadsOK)
	assert.Equal(t, 1, got.DeletesFailed)
	assert.Equal(t, run.StartedAt, got.StartedAt.UTC())
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	first, err := db.New(path)
	require.NoError(t, err)
	_, err = first.RecordRun(sampleRun("smp", time.Now()), nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.New(path)
	require.NoError(t, err)
	defer second.Close()

	runs, err := second.RecentRuns("", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
