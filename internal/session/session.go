// Package session records, in SQLite, which paths a session opened and the
// checksum of every document it saved, so that a later run can restore the
// same tree.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	root_label TEXT NOT NULL DEFAULT '',
	started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS opened_paths (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	path       TEXT NOT NULL,
	UNIQUE(session_id, path)
);

CREATE TABLE IF NOT EXISTS saves (
	path     TEXT PRIMARY KEY,
	checksum TEXT NOT NULL,
	saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_opened_session ON opened_paths(session_id);
`

// Session is one run of the application.
type Session struct {
	ID        string
	RootLabel string
	StartedAt time.Time
}

// DB wraps a sql.DB with session-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("session: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Start records a new session.
func (db *DB) Start(rootLabel string) (Session, error) {
	s := Session{ID: uuid.NewString(), RootLabel: rootLabel, StartedAt: time.Now().UTC()}
	_, err := db.conn.Exec(`INSERT INTO sessions (id, root_label, started_at) VALUES (?, ?, ?)`,
		s.ID, s.RootLabel, s.StartedAt)
	if err != nil {
		return Session{}, fmt.Errorf("session: start: %w", err)
	}
	return s, nil
}

// Latest returns the most recently started session other than exclude.
func (db *DB) Latest(exclude string) (Session, bool, error) {
	var s Session
	err := db.conn.QueryRow(`
		SELECT id, root_label, started_at FROM sessions
		WHERE id != ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`, exclude).Scan(&s.ID, &s.RootLabel, &s.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("session: latest: %w", err)
	}
	return s, true, nil
}

// SetRootLabel updates the label recorded for a session.
func (db *DB) SetRootLabel(id, label string) error {
	if _, err := db.conn.Exec(`UPDATE sessions SET root_label = ? WHERE id = ?`, label, id); err != nil {
		return fmt.Errorf("session: set root label: %w", err)
	}
	return nil
}

// RecordOpen appends path to the session's opened paths. Reopening a path
// keeps its first position.
func (db *DB) RecordOpen(id, path string) error {
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO opened_paths (session_id, position, path)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM opened_paths WHERE session_id = ?), ?)
	`, id, id, path)
	if err != nil {
		return fmt.Errorf("session: record open: %w", err)
	}
	return nil
}

// Paths returns the paths a session opened, in opening order.
func (db *DB) Paths(id string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM opened_paths WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("session: paths: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("session: scan path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordSave stores the checksum of the bytes last written to path.
func (db *DB) RecordSave(path, checksum string) error {
	_, err := db.conn.Exec(`
		INSERT INTO saves (path, checksum, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum = excluded.checksum,
			saved_at = excluded.saved_at
	`, path, checksum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("session: record save: %w", err)
	}
	return nil
}

// SavedChecksum returns the checksum recorded by the last save of path, or
// "" if it was never saved.
func (db *DB) SavedChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM saves WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: saved checksum: %w", err)
	}
	return cs, nil
}
