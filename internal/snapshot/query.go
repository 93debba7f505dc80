package snapshot

import "fmt"

// Stats summarizes a snapshot.
type Stats struct {
	Proofs   int `json:"proofs"`
	Weeks    int `json:"weeks"`
	Authors  int `json:"authors"`
	Dangling int `json:"dangling"`
}

// Stats counts rows in the snapshot. Dangling counts week references that
// name no proof.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`
		SELECT
			(SELECT count(*) FROM proofs),
			(SELECT count(*) FROM weeks),
			(SELECT count(DISTINCT author) FROM proof_authors),
			(SELECT count(*) FROM week_proofs wp
				LEFT JOIN proofs p ON p.pid = wp.pid
				WHERE p.pid IS NULL)
	`).Scan(&s.Proofs, &s.Weeks, &s.Authors, &s.Dangling)
	if err != nil {
		return Stats{}, fmt.Errorf("snapshot: stats: %w", err)
	}
	return s, nil
}

// WeekTitles returns the titles of week n's proofs in presentation order.
// A dangling reference yields an empty string.
func (db *DB) WeekTitles(n int) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT coalesce(p.title, '')
		FROM week_proofs wp
		LEFT JOIN proofs p ON p.pid = wp.pid
		WHERE wp.number = ?
		ORDER BY wp.position
	`, n)
	if err != nil {
		return nil, fmt.Errorf("snapshot: week titles: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		out = append(out, title)
	}
	return out, rows.Err()
}

// SearchResult is one search hit.
type SearchResult struct {
	ID      int64  `json:"pid"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
