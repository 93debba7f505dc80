// Package migrate rewrites legacy timestamp dates in a content tree to the
// canonical dd/mm/yyyy form. Only the date value changes; every other byte
// of a file is kept.
package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/content"
	"github.com/starford/kholles/internal/models"
	"github.com/starford/kholles/internal/parser"
	"github.com/starford/kholles/internal/storage"
)

// LegacyLayouts are the timestamp layouts older content trees used for
// dates, tried in order.
var LegacyLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Change records one rewritten date.
type Change struct {
	Path string `json:"path"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Report summarizes a migration run.
type Report struct {
	Scanned int      `json:"scanned"`
	Changes []Change `json:"changes"`
}

// Migrator plans and applies date rewrites under a content root.
type Migrator struct {
	store  storage.Provider
	logger *slog.Logger
}

// New creates a Migrator for the content tree at root.
func New(root string, logger *slog.Logger) (*Migrator, error) {
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, err
	}
	return NewWithStore(store, logger), nil
}

// NewWithStore creates a Migrator writing through store.
func NewWithStore(store storage.Provider, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{store: store, logger: logger}
}

// ErrChangedSinceScan is returned when a planned file no longer holds the
// bytes it was planned from. Files already rewritten stay rewritten.
var ErrChangedSinceScan = errors.New("migrate: file changed since it was scanned")

type pending struct {
	change Change
	orig   []byte
	data   []byte
}

// Run scans both subtrees and rewrites every legacy date. All files are
// planned before any is written, so a file with an unrecognized date leaves
// the tree untouched. Each file is read again just before it is written and
// must still match what was scanned. With dryRun set nothing is written.
func (m *Migrator) Run(dryRun bool) (Report, error) {
	var plan []pending
	report := Report{Changes: []Change{}}

	collect := func(dir, ext string, locate func([]byte) (int, int, bool)) error {
		return storage.Walk(filepath.Join(m.store.Root(), dir), ext, func(p string, data []byte) error {
			report.Scanned++
			start, end, ok := locate(data)
			if !ok {
				m.logger.Warn("migrate: no front matter, skipped", slog.String("path", p))
				return nil
			}
			out, ch, err := rewriteDate(data, start, end)
			if err != nil {
				return apperr.AtPath(p, err)
			}
			if ch == nil {
				return nil
			}
			rel, err := filepath.Rel(m.store.Root(), p)
			if err != nil {
				return apperr.AtPath(p, apperr.Kind(apperr.ErrIO, err))
			}
			ch.Path = filepath.ToSlash(rel)
			plan = append(plan, pending{change: *ch, orig: data, data: out})
			return nil
		})
	}

	if err := collect(content.ProofsDir, content.ProofExt, locateProofBlock); err != nil {
		return Report{}, err
	}
	if err := collect(content.WeeksDir, content.WeekExt, locateWholeFile); err != nil {
		return Report{}, err
	}

	for _, pd := range plan {
		report.Changes = append(report.Changes, pd.change)
		m.logger.Info("migrate: date",
			slog.String("path", pd.change.Path),
			slog.String("from", pd.change.From),
			slog.String("to", pd.change.To),
			slog.Bool("dry_run", dryRun))
		if dryRun {
			continue
		}
		rel := filepath.FromSlash(pd.change.Path)
		current, err := m.store.Read(rel)
		if err != nil {
			return report, apperr.AtPath(pd.change.Path, apperr.Kind(apperr.ErrIO, err))
		}
		if !bytes.Equal(current, pd.orig) {
			return report, apperr.AtPath(pd.change.Path, ErrChangedSinceScan)
		}
		if err := m.store.Write(rel, pd.data); err != nil {
			return report, apperr.AtPath(pd.change.Path, apperr.Kind(apperr.ErrIO, err))
		}
	}
	return report, nil
}

func locateProofBlock(data []byte) (int, int, bool) {
	start, end, _, ok := parser.LocateFrontmatter(data)
	return start, end, ok
}

func locateWholeFile(data []byte) (int, int, bool) {
	return 0, len(data), true
}

// ParseLegacy parses s with the first matching legacy layout and keeps only
// the calendar date as written.
func ParseLegacy(s string) (models.Date, bool) {
	for _, layout := range LegacyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return models.Date{}, false
}

// rewriteDate returns data with the top-level date value of the YAML in
// data[start:end] replaced by its canonical form. A nil Change means the
// date is absent or already canonical.
func rewriteDate(data []byte, start, end int) ([]byte, *Change, error) {
	block := data[start:end]
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, nil, apperr.Kind(apperr.ErrSchema, fmt.Errorf("decode yaml: %w", err))
	}
	val := dateValue(&doc)
	if val == nil {
		return nil, nil, nil
	}
	if _, err := models.ParseDate(val.Value); err == nil {
		return nil, nil, nil
	}
	d, ok := ParseLegacy(val.Value)
	if !ok {
		return nil, nil, apperr.Kind(apperr.ErrDateFormat,
			fmt.Errorf("date %q matches neither dd/mm/yyyy nor a legacy timestamp", val.Value))
	}

	from, to, err := tokenSpan(block, val)
	if err != nil {
		return nil, nil, err
	}
	replacement := d.String()
	out := make([]byte, 0, len(data)-(to-from)+len(replacement))
	out = append(out, data[:start+from]...)
	out = append(out, replacement...)
	out = append(out, data[start+to:]...)
	return out, &Change{From: val.Value, To: replacement}, nil
}

// dateValue finds the scalar value of the top-level "date" key.
func dateValue(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == "date" && m.Content[i+1].Kind == yaml.ScalarNode {
			return m.Content[i+1]
		}
	}
	return nil
}

var errNotInPlace = errors.New("date value cannot be rewritten in place")

// tokenSpan returns the byte range in block of the scalar token for n,
// quotes included.
func tokenSpan(block []byte, n *yaml.Node) (int, int, error) {
	lineStart := 0
	for line := 1; line < n.Line; line++ {
		i := bytes.IndexByte(block[lineStart:], '\n')
		if i < 0 {
			return 0, 0, apperr.Kind(apperr.ErrSchema, errNotInPlace)
		}
		lineStart += i + 1
	}
	from := lineStart + n.Column - 1

	width := len(n.Value)
	switch n.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		width += 2
	case 0:
	default:
		return 0, 0, apperr.Kind(apperr.ErrSchema, errNotInPlace)
	}
	to := from + width
	if from < 0 || to > len(block) {
		return 0, 0, apperr.Kind(apperr.ErrSchema, errNotInPlace)
	}
	tok := string(block[from:to])
	if n.Style != 0 {
		tok = tok[1 : len(tok)-1]
	}
	if tok != n.Value {
		return 0, 0, apperr.Kind(apperr.ErrSchema, errNotInPlace)
	}
	return from, to, nil
}
