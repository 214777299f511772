// Package sqlite provides SQLite-based persistent storage for Tether.
// Uses WAL mode for concurrent reads and crash-safe writes. State is stored
// as JSON blobs under well-known keys; the schema is a single key-value
// table so mobile and desktop builds share one storage contract.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Well-known blob keys.
const (
	KeyGamificationState = "tether:gamification_state"
	KeyStreakData        = "tether:streak_data"
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
		// JSON blob store for engine state
		`CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Blob Store ─────────────────────────────────────────────────────────────

// SetBlob upserts a JSON blob under key.
func (d *DB) SetBlob(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	return err
}

// GetBlob retrieves the blob stored under key. Returns ok=false when the key
// has never been written.
func (d *DB) GetBlob(key string) (value string, ok bool, err error) {
	err = d.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// BlobUpdatedAt returns the last write time for key, or the zero time when
// the key has never been written.
func (d *DB) BlobUpdatedAt(key string) (time.Time, error) {
	var unix int64
	err := d.db.QueryRow(`SELECT updated_at FROM blobs WHERE key = ?`, key).Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0), nil
}

// DeleteBlob removes a single blob. Deleting a missing key is not an error.
func (d *DB) DeleteBlob(key string) error {
	_, err := d.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
	return err
}

// DeleteAllBlobs wipes the blob store. Used by explicit full reset only.
func (d *DB) DeleteAllBlobs() error {
	_, err := d.db.Exec(`DELETE FROM blobs`)
	return err
}
