//go:build sqlite_fts5

package snapshot

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/kholles/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE proofs_fts USING fts5(
			pid UNINDEXED,
			title,
			content,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, pid int64, p models.Proof) error {
	_, err := tx.Exec(`INSERT INTO proofs_fts (pid, title, content, tags) VALUES (?, ?, ?, ?)`,
		pid, p.Title, p.Content, strings.Join(p.Tags, " "))
	if err != nil {
		return fmt.Errorf("snapshot: insert fts: %w", err)
	}
	return nil
}

// Search runs an FTS5 query over proof titles, bodies and tags.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT pid, title, snippet(proofs_fts, 2, '<b>', '</b>', '...', 64)
		FROM proofs_fts
		WHERE proofs_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
