package internal

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/starford/kholles/internal/content"
	"github.com/starford/kholles/internal/mcpserver"
	"github.com/starford/kholles/internal/migrate"
	"github.com/starford/kholles/internal/models"
	"github.com/starford/kholles/internal/snapshot"
)

// CheckResult summarizes a content check.
type CheckResult struct {
	Proofs   int
	Weeks    int
	Dangling int
}

// Check loads both collections, warns about every dangling reference and
// fails on the first content error.
func Check(_ context.Context, opts ...Option) (CheckResult, error) {
	app, err := newApplication(opts)
	if err != nil {
		return CheckResult{}, err
	}
	logger := app.logger
	loader := app.loader()

	proofs, err := loader.Proofs()
	if err != nil {
		return CheckResult{}, err
	}
	weeks, err := loader.Weeks()
	if err != nil {
		return CheckResult{}, err
	}

	res := CheckResult{Proofs: len(proofs), Weeks: len(weeks)}
	numbers := slices.Sorted(maps.Keys(weeks))
	for _, n := range numbers {
		w := weeks[n]
		for _, id := range content.Resolve(w, proofs).Dangling() {
			res.Dangling++
			logger.Warn("check: dangling reference",
				slog.Int("week", int(n)),
				slog.Uint64("proof", uint64(id)))
		}
	}

	logger.Info("check: content loaded",
		slog.Int("proofs", res.Proofs),
		slog.Int("weeks", res.Weeks),
		slog.Int("dangling", res.Dangling))
	return res, nil
}

// Export writes the content tree to a SQLite snapshot at out.
func Export(_ context.Context, out string, overwrite bool, opts ...Option) (snapshot.Stats, error) {
	app, err := newApplication(opts)
	if err != nil {
		return snapshot.Stats{}, err
	}
	stats, err := snapshot.Export(app.loader(), out, overwrite)
	if err != nil {
		return snapshot.Stats{}, err
	}
	app.logger.Info("export: snapshot written",
		slog.String("path", out),
		slog.Int("proofs", stats.Proofs),
		slog.Int("weeks", stats.Weeks),
		slog.Int("dangling", stats.Dangling))
	return stats, nil
}

// Migrate rewrites legacy timestamp dates under the content root.
func Migrate(_ context.Context, dryRun bool, opts ...Option) (migrate.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return migrate.Report{}, err
	}
	m, err := migrate.New(app.config.Content.Path, app.logger)
	if err != nil {
		return migrate.Report{}, fmt.Errorf("migrate: %w", err)
	}
	report, err := m.Run(dryRun)
	if err != nil {
		return report, err
	}
	app.logger.Info("migrate: done",
		slog.Int("scanned", report.Scanned),
		slog.Int("changed", len(report.Changes)),
		slog.Bool("dry_run", dryRun))
	return report, nil
}

// Search runs query against the snapshot file at dbPath and returns at most
// limit hits.
func Search(_ context.Context, dbPath, query string, limit int, opts ...Option) ([]snapshot.SearchResult, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	db, err := snapshot.OpenReadOnly(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	hits, err := db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	app.logger.Debug("search: done",
		slog.String("path", dbPath),
		slog.String("query", query),
		slog.Int("hits", len(hits)))
	return hits, nil
}

// WeekTitles lists the proof titles of week n from the snapshot file at
// dbPath, in presentation order. Dangling references are empty strings.
func WeekTitles(_ context.Context, dbPath string, n models.WeekNumber, opts ...Option) ([]string, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	db, err := snapshot.OpenReadOnly(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	titles, err := db.WeekTitles(int(n))
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		app.logger.Warn("week: no proofs listed", slog.Int("week", int(n)))
	}
	return titles, nil
}

// ServeMCP serves the catalog tools over stdio until the client disconnects.
// The logger must not write to stdout.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	slog.SetDefault(app.logger)
	app.logger.Info("mcp: serving on stdio", slog.String("content_path", app.config.Content.Path))
	return mcpserver.New(app.catalog(), app.version).ServeStdio()
}

