// Package snapshot writes a loaded content tree to a standalone SQLite file
// for offline querying. The server never reads it back.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE proofs (
	pid      INTEGER PRIMARY KEY,
	title    TEXT NOT NULL,
	note     TEXT,
	date     TEXT NOT NULL,
	date_iso TEXT NOT NULL,
	content  TEXT NOT NULL,
	checksum TEXT NOT NULL
);

CREATE TABLE proof_authors (
	pid      INTEGER NOT NULL REFERENCES proofs(pid) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	author   TEXT NOT NULL,
	PRIMARY KEY (pid, position)
);

CREATE TABLE proof_tags (
	pid      INTEGER NOT NULL REFERENCES proofs(pid) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	tag      TEXT NOT NULL,
	PRIMARY KEY (pid, position)
);

CREATE TABLE weeks (
	number      INTEGER PRIMARY KEY,
	date        TEXT NOT NULL,
	date_iso    TEXT NOT NULL,
	description TEXT NOT NULL
);

-- pid is a soft reference: it may name no proof.
CREATE TABLE week_proofs (
	number   INTEGER NOT NULL REFERENCES weeks(number) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	pid      INTEGER NOT NULL,
	PRIMARY KEY (number, position)
);

CREATE INDEX idx_proof_authors_author ON proof_authors(author);
CREATE INDEX idx_proof_tags_tag ON proof_tags(tag);
CREATE INDEX idx_week_proofs_pid ON week_proofs(pid);
`

// ErrExists is returned by Create when the target file already exists and
// overwriting was not requested.
var ErrExists = errors.New("snapshot: file already exists")

// DB is an open snapshot file.
type DB struct {
	conn *sql.DB
}

// Create creates a snapshot file at path and applies the schema. An existing
// file is replaced only when overwrite is set.
func Create(path string, overwrite bool) (*DB, error) {
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("snapshot: remove old file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("snapshot: stat: %w", err)
	}

	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: apply schema: %w", err)
	}
	if err := initFTS(db.conn); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: apply fts schema: %w", err)
	}
	return db, nil
}

// Open opens an existing snapshot file.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=DELETE&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("snapshot: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: ping: %w", err)
	}
	return &DB{conn: conn}, nil
}

// OpenReadOnly opens an existing snapshot file for queries only. A missing
// file is an error wrapping fs.ErrNotExist.
func OpenReadOnly(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	conn, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("snapshot: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: ping: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
