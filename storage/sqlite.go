// Package storage persists calculation runs and hazard curves to an
// embedded SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite wraps the results database connection.
type SQLite struct {
	DB     *sql.DB
	Path   string
	Logger *zap.SugaredLogger
}

// NewSQLite opens (creating if needed) the results database at dbPath and
// applies the schema.
func NewSQLite(dbPath string, logger *zap.SugaredLogger) (*SQLite, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// modernc sqlite is serialized per connection; a single connection
	// avoids SQLITE_BUSY between writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLite{DB: db, Path: dbPath, Logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Infow("opened results database", "path", dbPath)
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	model_name TEXT NOT NULL,
	time_span REAL NOT NULL,
	truncation_level REAL NOT NULL,
	max_distance REAL NOT NULL,
	num_sites INTEGER NOT NULL,
	num_sources INTEGER NOT NULL,
	eff_ruptures INTEGER NOT NULL,
	elapsed_seconds REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS curves (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	site_id INTEGER NOT NULL,
	imt TEXT NOT NULL,
	level_index INTEGER NOT NULL,
	level REAL NOT NULL,
	poe REAL NOT NULL,
	PRIMARY KEY (run_id, site_id, imt, level_index)
);
CREATE INDEX IF NOT EXISTS idx_curves_run_imt ON curves(run_id, imt);
`
	if _, err := s.DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.DB.Close()
}
