// Package metricsdb journals mount sessions and periodic resource-usage
// samples to a schema-migrated SQLite database, for post-hoc inspection of
// a long-lived mount. It never informs the overlay's own read path — the
// core re-dispatches every call fresh regardless of what this package has
// recorded.
package metricsdb

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a migrated SQLite connection and the id of the current mount
// session row.
type DB struct {
	sql       *sql.DB
	sessionID int64
}

// Open runs pending migrations against path (created if absent) and
// records the start of a new mount session for root/mountpoint.
func Open(path, root, mountpoint string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	res, err := sqlDB.Exec(
		`INSERT INTO mount_sessions (root, mountpoint, started_at) VALUES (?, ?, ?)`,
		root, mountpoint, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("record mount session: %w", err)
	}
	sessionID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read session id: %w", err)
	}

	return &DB{sql: sqlDB, sessionID: sessionID}, nil
}

// Sample is one point-in-time resource-usage reading.
type Sample struct {
	RepoCount              int
	BlobDescriptors        int
	PassthroughDescriptors int
	CachedBlobs            int
}

// RecordSample journals one usage sample against the current session.
func (d *DB) RecordSample(s Sample) error {
	_, err := d.sql.Exec(
		`INSERT INTO samples (session_id, taken_at, repo_count, blob_descriptors, passthrough_descriptors, cached_blobs)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.sessionID, time.Now().UTC(), s.RepoCount, s.BlobDescriptors, s.PassthroughDescriptors, s.CachedBlobs,
	)
	if err != nil {
		return fmt.Errorf("record sample: %w", err)
	}
	return nil
}

// Close marks the current session as ended and closes the connection.
func (d *DB) Close() error {
	if _, err := d.sql.Exec(
		`UPDATE mount_sessions SET ended_at = ? WHERE id = ?`,
		time.Now().UTC(), d.sessionID,
	); err != nil {
		_ = d.sql.Close()
		return fmt.Errorf("record session end: %w", err)
	}
	return d.sql.Close()
}
