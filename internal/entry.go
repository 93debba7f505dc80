// Package internal wires configuration, content loading and the outer
// surfaces (HTTP, MCP, CLI commands) together.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/kholles/internal/api"
	"github.com/starford/kholles/internal/catalog"
	"github.com/starford/kholles/internal/content"
	"github.com/starford/kholles/internal/sse"
	"github.com/starford/kholles/internal/watch"
)

// Run starts the HTTP server and, when live reload is enabled, the content
// watcher. It returns after a shutdown signal or when ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.Bool("live_reload", cfg.App.LiveReload),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	var broker *sse.Broker
	var sseHandler http.Handler
	if cfg.App.LiveReload {
		broker = sse.NewBroker(time.Second)
		defer broker.Close()
		sseHandler = broker
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           app.router(app.catalog(), sseHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	if broker != nil {
		g.Go(func() error {
			root := cfg.Content.Path
			if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
				logger.Warn("watcher: content root unavailable, live reload disabled", slog.String("root", root))
				return nil
			}
			watchOpts := watch.Options{Extensions: []string{content.ProofExt, content.WeekExt}}
			if err := watch.Watch(gCtx, root, logger, watchOpts, broker.PublishContentChanged); err != nil {
				logger.Error("watcher: failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		stop()

		// SSE streams only end when their clients go away; close the
		// broker first so Shutdown does not wait on them.
		if broker != nil {
			broker.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// router builds the top-level handler: health probes, metrics, the API
// under /api and optional static files.
func (a *application) router(svc *catalog.Service, sseHandler http.Handler) http.Handler {
	cfg := a.config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if info, err := os.Stat(cfg.Content.Path); err != nil || !info.IsDir() {
			writeStatus(w, http.StatusServiceUnavailable, "content root unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, sseHandler))

	if cfg.App.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.App.StaticDir))))
	}

	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
