//go:build !sqlite_fts5

package snapshot

import (
	"database/sql"
	"fmt"

	"github.com/starford/kholles/internal/models"
)

func initFTS(_ *sql.DB) error { return nil }

func ftsInsert(_ *sql.Tx, _ int64, _ models.Proof) error { return nil }

// Search matches query against proof titles and bodies with LIKE when the
// binary is built without FTS5.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT pid, title, substr(content, 1, 200)
		FROM proofs
		WHERE title LIKE ? OR content LIKE ?
		ORDER BY date_iso DESC, pid DESC
		LIMIT ?
	`, like, like, limit)
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
