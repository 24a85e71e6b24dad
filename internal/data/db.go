package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the exporter database and creates its tables
func OpenDB(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; delivery goroutines queue on this
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS whitelist_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			items TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT '',
			loaded_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create whitelist_snapshot table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS drops (
			id TEXT PRIMARY KEY,
			item TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			matched_at INTEGER NOT NULL,
			status TEXT NOT NULL,
			status_code INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create drops table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_drops_matched_at ON drops(matched_at)`)

	return db, nil
}
