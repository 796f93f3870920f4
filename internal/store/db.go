// Package store provides SQLite-based persistent state for the client.
// Uses WAL mode for concurrent reads and crash-safe writes.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Wallet state: balance split stored as key-value pairs so the
		// escrow lock survives a restart.
		`CREATE TABLE IF NOT EXISTS wallet_info (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Wallet ledger: deposits, fees, rewards. Rendered newest first.
		`CREATE TABLE IF NOT EXISTS wallet_transactions (
			id          TEXT PRIMARY KEY,
			type        TEXT NOT NULL,
			amount      REAL NOT NULL,
			timestamp   INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wallet_tx_ts ON wallet_transactions(timestamp)`,

		// Project history: append-only, keyed by project id. Deliverable
		// refs are a JSON array column.
		`CREATE TABLE IF NOT EXISTS project_history (
			id           TEXT PRIMARY KEY,
			prompt       TEXT NOT NULL,
			status       TEXT NOT NULL,
			timestamp    TEXT NOT NULL,
			cost         REAL NOT NULL,
			deliverables TEXT NOT NULL DEFAULT '[]',
			seq          INTEGER
		)`,

		// Rolling client log mirror (last 100 entries kept).
		`CREATE TABLE IF NOT EXISTS client_logs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			level     TEXT NOT NULL,
			category  TEXT NOT NULL,
			message   TEXT NOT NULL,
			data      TEXT
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Key-Value Info ─────────────────────────────────────────────────────────

// SetInfo stores a key-value pair in wallet_info.
func (d *DB) SetInfo(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO wallet_info (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetInfo retrieves a value from wallet_info. Missing keys return "".
func (d *DB) GetInfo(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM wallet_info WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
