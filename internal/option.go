package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/kholles/internal/catalog"
	"github.com/starford/kholles/internal/content"
	"github.com/starford/kholles/internal/render"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	logger  *slog.Logger
	version string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger overrides the JSON stdout logger built from the config.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = NewLogger(app.config.App.LogLevel)
	}
	return app, nil
}

func (a *application) loader() *content.Loader {
	return content.NewLoader(a.config.Content.Path, content.WithLogger(a.logger))
}

func (a *application) catalog() *catalog.Service {
	return catalog.NewService(a.loader(), render.NewMarkdown())
}
