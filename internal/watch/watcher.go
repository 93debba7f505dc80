// Package watch notifies about changes to content files under a root
// directory. It never reads or parses the files it reports.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starford/kholles/internal/storage"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 150 * time.Millisecond

var changesReported = promauto.NewCounter(prometheus.CounterOpts{
	Name: "kholles_watch_changes_total",
	Help: "Total content file changes reported by the watcher",
})

// ChangeFunc receives the slash-separated path, relative to the root, of a
// file that was created, written, removed or renamed.
type ChangeFunc func(rel string)

// Options tunes a watcher.
type Options struct {
	// Debounce is how long a burst of events must stay quiet before the
	// changed paths are reported.
	Debounce time.Duration
	// Extensions lists the file extensions to report, without the dot.
	// Empty means every file.
	Extensions []string
}

func (o Options) matches(name string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return slices.Contains(o.Extensions, ext)
}

// Watch watches root and its subdirectories until ctx is cancelled, calling
// cb once per changed path after each debounce window. Paths within a window
// are reported in sorted order. Directories created at runtime are added to
// the watch list.
func Watch(ctx context.Context, root string, logger *slog.Logger, opts Options, cb ChangeFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]struct{})
	timer := time.NewTimer(opts.Debounce)
	timer.Stop()

	flush := func() {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		clear(pending)
		slices.Sort(paths)
		for _, p := range paths {
			logger.Debug("watcher: changed", slog.String("path", p))
			changesReported.Inc()
			if cb != nil {
				cb(p)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					collectFiles(root, ev.Name, opts, pending)
					timer.Reset(opts.Debounce)
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !opts.matches(ev.Name) {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			timer.Reset(opts.Debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// collectFiles marks every matching file already present in a newly
// created directory; its creation events may have raced the watch.
func collectFiles(root, dir string, opts Options, pending map[string]struct{}) {
	_ = storage.WalkFiles(dir, func(p string) error {
		if !opts.matches(p) {
			return nil
		}
		if rel, relErr := filepath.Rel(root, p); relErr == nil {
			pending[filepath.ToSlash(rel)] = struct{}{}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// following symbolic links to directories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return storage.WalkDirs(root, w.Add)
}
