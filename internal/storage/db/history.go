package db

import (
	"fmt"
	"time"
)

// SyncRun is one recorded orchestrator run.
type SyncRun struct {
	ID              int64
	ProfileName     string
	Branch          string
	Strategy        string
	DownloadsOK     int
	DownloadsFailed int
	DeletesOK       int
	DeletesFailed   int
	Cancelled       bool
	StartedAt       time.Time
	FinishedAt      time.Time
}

// UnitFailure is one failed unit within a run.
type UnitFailure struct {
	Unit   string
	Kind   string
	Reason string
}

// RecordRun inserts a completed run with its per-unit failures.
func (d *DB) RecordRun(run SyncRun, failures []UnitFailure) (int64, error) {
	res, err := d.Exec(`
		INSERT INTO sync_runs
			(profile_name, branch, strategy, downloads_ok, downloads_failed,
			 deletes_ok, deletes_failed, cancelled, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ProfileName, run.Branch, run.Strategy,
		run.DownloadsOK, run.DownloadsFailed, run.DeletesOK, run.DeletesFailed,
		run.Cancelled, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("recording sync run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting run id: %w", err)
	}

	for _, f := range failures {
		if _, err := d.Exec(`
			INSERT INTO sync_unit_failures (run_id, unit, kind, reason)
			VALUES (?, ?, ?, ?)
		`, id, f.Unit, f.Kind, f.Reason); err != nil {
			return id, fmt.Errorf("recording unit failure: %w", err)
		}
	}
	return id, nil
}

// RecentRuns returns the most recent runs for a profile, newest first.
// An empty profile name returns runs across all profiles.
func (d *DB) RecentRuns(profileName string, limit int) ([]SyncRun, error) {
	query := `
		SELECT id, profile_name, branch, strategy, downloads_ok, downloads_failed,
		       deletes_ok, deletes_failed, cancelled, started_at, finished_at
		FROM sync_runs
	`
	args := []any{}
	if profileName != "" {
		query += " WHERE profile_name = ?"
		args = append(args, profileName)
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var run SyncRun
		if err := rows.Scan(&run.ID, &run.ProfileName, &run.Branch, &run.Strategy,
			&run.DownloadsOK, &run.DownloadsFailed, &run.DeletesOK, &run.DeletesFailed,
			&run.Cancelled, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync runs: %w", err)
	}
	return runs, nil
}

// RunFailures returns the recorded unit failures for a run.
func (d *DB) RunFailures(runID int64) ([]UnitFailure, error) {
	rows, err := d.Query(`
		SELECT unit, kind, reason FROM sync_unit_failures WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying unit failures: %w", err)
	}
	defer rows.Close()

	var failures []UnitFailure
	for rows.Next() {
		var f UnitFailure
		if err := rows.Scan(&f.Unit, &f.Kind, &f.Reason); err != nil {
			return nil, fmt.Errorf("scanning unit failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unit failures: %w", err)
	}
	return failures, nil
}
