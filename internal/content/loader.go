// Package content loads proofs and weeks from the content tree and resolves
// the references between them.
//
// Every call re-reads the tree; nothing is cached between calls.
package content

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/models"
	"github.com/starford/kholles/internal/parser"
	"github.com/starford/kholles/internal/storage"
)

// Subtree names and file extensions under the content root.
const (
	ProofsDir = "proofs"
	WeeksDir  = "weeks"
	ProofExt  = "md"
	WeekExt   = "yaml"
)

// Loader reads the proof and week collections under a fixed root.
type Loader struct {
	root   string
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader for the content tree at root.
func NewLoader(root string, opts ...LoaderOption) *Loader {
	l := &Loader{root: root, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the content root.
func (l *Loader) Root() string { return l.root }

// ProofsRoot returns the directory holding proof documents.
func (l *Loader) ProofsRoot() string { return filepath.Join(l.root, ProofsDir) }

// WeeksRoot returns the directory holding week descriptors.
func (l *Loader) WeeksRoot() string { return filepath.Join(l.root, WeeksDir) }

// Proofs loads every proof document keyed by id. The first invalid file
// aborts the load; the error names that file and no map is returned.
func (l *Loader) Proofs() (map[models.ProofID]models.Proof, error) {
	start := time.Now()
	proofs := make(map[models.ProofID]models.Proof)
	origin := make(map[models.ProofID]string)

	err := storage.Walk(l.ProofsRoot(), ProofExt, func(p string, data []byte) error {
		proof, err := parser.ParseProof(data)
		if err != nil {
			return apperr.AtPath(p, err)
		}
		if prev, ok := origin[proof.ID]; ok {
			return apperr.AtPath(p, apperr.Kind(apperr.ErrDuplicateIdentifier,
				fmt.Errorf("pid %d already defined in %s", proof.ID, prev)))
		}
		origin[proof.ID] = p
		proofs[proof.ID] = proof
		filesParsed.WithLabelValues(kindProofs).Inc()
		return nil
	})
	observeLoad(kindProofs, start, err)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("content: proofs loaded",
		slog.String("root", l.ProofsRoot()),
		slog.Int("count", len(proofs)),
		slog.Duration("took", time.Since(start)))
	return proofs, nil
}

// Weeks loads every week descriptor keyed by the number in its file name.
// The first invalid file aborts the load; the error names that file and no
// map is returned.
func (l *Loader) Weeks() (map[models.WeekNumber]models.Week, error) {
	start := time.Now()
	weeks := make(map[models.WeekNumber]models.Week)
	origin := make(map[models.WeekNumber]string)

	err := storage.Walk(l.WeeksRoot(), WeekExt, func(p string, data []byte) error {
		week, err := parser.ParseWeek(data, stem(p))
		if err != nil {
			return apperr.AtPath(p, err)
		}
		if prev, ok := origin[week.Number]; ok {
			return apperr.AtPath(p, apperr.Kind(apperr.ErrDuplicateIdentifier,
				fmt.Errorf("week %d already defined in %s", week.Number, prev)))
		}
		origin[week.Number] = p
		weeks[week.Number] = week
		filesParsed.WithLabelValues(kindWeeks).Inc()
		return nil
	})
	observeLoad(kindWeeks, start, err)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("content: weeks loaded",
		slog.String("root", l.WeeksRoot()),
		slog.Int("count", len(weeks)),
		slog.Duration("took", time.Since(start)))
	return weeks, nil
}

func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
