package db

import "fmt"

func (d *DB) migrate() error {
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var version int
	err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	migrations := []func(*DB) error{
		migrateV1,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](d); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := d.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}
	return nil
}

func migrateV1(d *DB) error {
	statements := []string{
		`CREATE TABLE sync_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_name TEXT NOT NULL,
			branch TEXT NOT NULL,
			strategy TEXT NOT NULL,
			downloads_ok INTEGER NOT NULL DEFAULT 0,
			downloads_failed INTEGER NOT NULL DEFAULT 0,
			deletes_ok INTEGER NOT NULL DEFAULT 0,
			deletes_failed INTEGER NOT NULL DEFAULT 0,
			cancelled INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		)`,
		`CREATE INDEX idx_sync_runs_profile ON sync_runs(profile_name, started_at)`,
		`CREATE TABLE sync_unit_failures (
			run_id INTEGER NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
			unit TEXT NOT NULL,
			kind TEXT NOT NULL,
			reason TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
