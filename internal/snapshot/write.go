package snapshot

import (
	"fmt"
	"math"

	"github.com/starford/kholles/internal/checksum"
	"github.com/starford/kholles/internal/models"
)

const isoLayout = "2006-01-02"

// Write stores proofs and weeks in a single transaction. Either everything
// is written or nothing is.
func (db *DB) Write(proofs []models.Proof, weeks []models.Week) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	insProof, err := tx.Prepare(`INSERT INTO proofs (pid, title, note, date, date_iso, content, checksum) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare proof insert: %w", err)
	}
	defer insProof.Close()
	insAuthor, err := tx.Prepare(`INSERT INTO proof_authors (pid, position, author) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare author insert: %w", err)
	}
	defer insAuthor.Close()
	insTag, err := tx.Prepare(`INSERT INTO proof_tags (pid, position, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare tag insert: %w", err)
	}
	defer insTag.Close()

	for _, p := range proofs {
		if uint64(p.ID) > math.MaxInt64 {
			return fmt.Errorf("snapshot: proof id %d exceeds the sqlite integer range", p.ID)
		}
		pid := int64(p.ID)
		if _, err := insProof.Exec(pid, p.Title, p.Note, p.Date.String(), p.Date.Format(isoLayout),
			p.Content, checksum.Sum([]byte(p.Content))); err != nil {
			return fmt.Errorf("snapshot: insert proof %d: %w", p.ID, err)
		}
		for i, a := range p.Authors {
			if _, err := insAuthor.Exec(pid, i, a); err != nil {
				return fmt.Errorf("snapshot: insert author of proof %d: %w", p.ID, err)
			}
		}
		for i, tag := range p.Tags {
			if _, err := insTag.Exec(pid, i, tag); err != nil {
				return fmt.Errorf("snapshot: insert tag of proof %d: %w", p.ID, err)
			}
		}
		if err := ftsInsert(tx, pid, p); err != nil {
			return err
		}
	}

	insWeek, err := tx.Prepare(`INSERT INTO weeks (number, date, date_iso, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare week insert: %w", err)
	}
	defer insWeek.Close()
	insRef, err := tx.Prepare(`INSERT INTO week_proofs (number, position, pid) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare week proof insert: %w", err)
	}
	defer insRef.Close()

	for _, w := range weeks {
		if _, err := insWeek.Exec(int(w.Number), w.Date.String(), w.Date.Format(isoLayout), w.Description); err != nil {
			return fmt.Errorf("snapshot: insert week %d: %w", w.Number, err)
		}
		for i, id := range w.Proofs {
			if uint64(id) > math.MaxInt64 {
				return fmt.Errorf("snapshot: week %d references proof id %d beyond the sqlite integer range", w.Number, id)
			}
			if _, err := insRef.Exec(int(w.Number), i, int64(id)); err != nil {
				return fmt.Errorf("snapshot: insert proof ref of week %d: %w", w.Number, err)
			}
		}
	}

	return tx.Commit()
}
