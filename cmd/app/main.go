package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/kholles/internal"
	"github.com/starford/kholles/internal/parser"
	pkgconfig "github.com/starford/kholles/pkg/config"
)

var version = "dev"

// loadConfig reads the optional config file and applies the --content
// override.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}

	if cmd.IsSet("content") {
		cfg.Content.Path = cmd.String("content")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogger(internal.NewStderrLogger(cfg.App.LogLevel)),
	)
}

func check(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := internal.Check(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return nil
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := internal.Export(ctx, cmd.String("out"), cmd.Bool("force"), internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

func migrateDates(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := internal.Migrate(ctx, cmd.Bool("dry-run"), internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	return nil
}

func search(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return errors.New("search: a query is required")
	}
	hits, err := internal.Search(ctx, cmd.String("db"), query, int(cmd.Int("limit")), internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printJSON(cmd.Root().Writer, hits)
}

func weekTitles(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := parser.ParseWeekNumber(cmd.Args().First())
	if err != nil {
		return err
	}
	titles, err := internal.WeekTitles(ctx, cmd.String("db"), n, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("week failed: %w", err)
	}
	return printJSON(cmd.Root().Writer, titles)
}

func printJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	dbFlag := &cli.StringFlag{
		Name:     "db",
		Usage:    "Snapshot file written by export",
		Required: true,
	}

	cmd := &cli.Command{
		Name:    "kholles",
		Usage:   "Serve a tree of Markdown proofs and weekly descriptors",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "content",
				Usage:   "Content root holding proofs/ and weeks/ (overrides the config file)",
				Sources: cli.EnvVars("CONTENT_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only MCP tools on stdio",
				Action: serveMCP,
			},
			{
				Name:   "check",
				Usage:  "Load all content, report dangling references, fail on the first error",
				Action: check,
			},
			{
				Name:   "export",
				Usage:  "Write the content tree to a SQLite snapshot",
				Action: export,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Snapshot file to create",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Replace an existing snapshot file",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Rewrite legacy timestamp dates to dd/mm/yyyy",
				Action: migrateDates,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report changes without writing",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search proofs in a snapshot and print the hits as JSON",
				ArgsUsage: "QUERY",
				Action:    search,
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits",
						Value: 20,
					},
				},
			},
			{
				Name:      "week",
				Usage:     "Print the proof titles of a week from a snapshot as JSON",
				ArgsUsage: "NUMBER",
				Action:    weekTitles,
				Flags:     []cli.Flag{dbFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
