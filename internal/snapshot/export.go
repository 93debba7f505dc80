package snapshot

import (
	"errors"
	"maps"
	"os"
	"slices"

	"github.com/starford/kholles/internal/models"
)

// Source provides both content collections.
type Source interface {
	Proofs() (map[models.ProofID]models.Proof, error)
	Weeks() (map[models.WeekNumber]models.Week, error)
}

// Export loads both collections once and writes them to a new snapshot file
// at path. A partially written file is removed on failure.
func Export(src Source, path string, overwrite bool) (Stats, error) {
	proofs, err := src.Proofs()
	if err != nil {
		return Stats{}, err
	}
	weeks, err := src.Weeks()
	if err != nil {
		return Stats{}, err
	}

	ps := slices.Collect(maps.Values(proofs))
	models.SortProofs(ps)
	ws := slices.Collect(maps.Values(weeks))
	models.SortWeeks(ws)

	db, err := Create(path, overwrite)
	if err != nil {
		return Stats{}, err
	}
	stats, err := writeAndCount(db, ps, ws)
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Stats{}, errors.Join(err, removeIfExists(path))
	}
	return stats, nil
}

func writeAndCount(db *DB, ps []models.Proof, ws []models.Week) (Stats, error) {
	if err := db.Write(ps, ws); err != nil {
		return Stats{}, err
	}
	return db.Stats()
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
