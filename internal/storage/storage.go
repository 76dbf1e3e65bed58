// Package storage keeps a SQLite history of analysis runs.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

const schemaVersion = 1

// Storage is a run history backed by one SQLite file.
type Storage struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the database at path, creating it and its directory if needed.
func Open(path string, logger *slog.Logger) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; concurrent HTTP handlers share the handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("opened run history", "path", path)

	return &Storage{db: db, path: path, logger: logger}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Storage) Path() string {
	return s.path
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,

		// One row per analysis run; report_json holds the full report.
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT,
			policy TEXT NOT NULL,
			window_seconds REAL NOT NULL,
			min_power_wkg REAL,
			max_power_wkg REAL,
			subjects INTEGER NOT NULL,
			selected INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			regression_status TEXT NOT NULL,
			slope REAL,
			intercept REAL,
			r_squared REAL,
			association TEXT NOT NULL,
			report_json TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,

		// Per-subject rows of the full cohort, for queries across runs.
		`CREATE TABLE IF NOT EXISTS run_subjects (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			subject_id TEXT NOT NULL,
			body_mass_kg REAL,
			running_economy_ml_kg_min REAL,
			net_metabolic_power_Wkg REAL,
			speed_m_per_s REAL,
			PRIMARY KEY (run_id, position)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_run_subjects_subject ON run_subjects(subject_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return err
		}
	}
	return nil
}
