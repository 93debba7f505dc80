package internal

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testApp(t *testing.T, files map[string]string, mutate func(*Config)) *application {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Content.Path = testutil.WriteTree(t, files)
	if mutate != nil {
		mutate(cfg)
	}
	app, err := newApplication([]Option{WithConfig(cfg), WithLogger(quietLogger())})
	if err != nil {
		t.Fatal(err)
	}
	return app
}

func sampleFiles() map[string]string {
	return map[string]string{
		"proofs/1.md":   testutil.ProofDoc(1, "Rolle", "01/09/2024", []string{"alice"}, "body"),
		"weeks/01.yaml": testutil.WeekDoc("02/09/2024", "Rentrée", 1, 8, 9),
	}
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := testApp(t, sampleFiles(), nil)
	h := app.router(app.catalog(), nil)

	if w := serve(t, h, "/health/live"); w.Code != http.StatusOK {
		t.Errorf("live = %d", w.Code)
	}
	if w := serve(t, h, "/health/ready"); w.Code != http.StatusOK {
		t.Errorf("ready = %d", w.Code)
	}
	w := serve(t, h, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("metrics = %d", w.Code)
	}
}

func TestRouter_ReadyFailsWithoutContentRoot(t *testing.T) {
	app := testApp(t, nil, func(c *Config) {
		c.Content.Path = filepath.Join(c.Content.Path, "missing")
	})
	h := app.router(app.catalog(), nil)
	if w := serve(t, h, "/health/ready"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready = %d, want 503", w.Code)
	}
}

func TestRouter_APIMountedWithAuth(t *testing.T) {
	app := testApp(t, sampleFiles(), func(c *Config) {
		c.Auth = AuthConfig{Mode: AuthModeToken, Token: "s3cret"}
	})
	h := app.router(app.catalog(), nil)

	if w := serve(t, h, "/api/weeks/1"); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
	w := serve(t, h, "/api/weeks/1?access_token=s3cret")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Rolle"`) {
		t.Errorf("with token = %d %s", w.Code, w.Body.String())
	}
	if w := serve(t, h, "/health/live"); w.Code != http.StatusOK {
		t.Errorf("health must stay public, got %d", w.Code)
	}
}

func TestRouter_StaticDir(t *testing.T) {
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	app := testApp(t, nil, func(c *Config) { c.App.StaticDir = static })
	h := app.router(app.catalog(), nil)

	w := serve(t, h, "/static/app.css")
	if w.Code != http.StatusOK || w.Body.String() != "body{}" {
		t.Errorf("static = %d %q", w.Code, w.Body.String())
	}
}

func TestCheck(t *testing.T) {
	files := sampleFiles()
	root := testutil.WriteTree(t, files)
	cfg := NewDefaultConfig()
	cfg.Content.Path = root

	res, err := Check(context.Background(), WithConfig(cfg), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if res != (CheckResult{Proofs: 1, Weeks: 1, Dangling: 2}) {
		t.Errorf("result = %+v", res)
	}

	testutil.WriteFile(t, root, "weeks/zero.yaml", testutil.WeekDoc("01/01/2024", "bad", 1))
	if _, err := Check(context.Background(), WithConfig(cfg), WithLogger(quietLogger())); !errors.Is(err, apperr.ErrInvalidIdentifier) {
		t.Errorf("err = %v, want invalid identifier", err)
	}
}

func TestExportCommand(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = testutil.WriteTree(t, sampleFiles())
	out := filepath.Join(t.TempDir(), "snap.db")

	stats, err := Export(context.Background(), out, false, WithConfig(cfg), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Proofs != 1 || stats.Dangling != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if _, err := Export(context.Background(), out, false, WithConfig(cfg), WithLogger(quietLogger())); err == nil {
		t.Error("second export without overwrite should fail")
	}
}

func TestSearchAndWeekCommands(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = testutil.WriteTree(t, sampleFiles())
	out := filepath.Join(t.TempDir(), "snap.db")
	ctx := context.Background()
	if _, err := Export(ctx, out, false, WithConfig(cfg), WithLogger(quietLogger())); err != nil {
		t.Fatal(err)
	}

	hits, err := Search(ctx, out, "Rolle", 5, WithConfig(cfg), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != 1 || hits[0].Title != "Rolle" {
		t.Errorf("hits = %+v", hits)
	}

	titles, err := WeekTitles(ctx, out, 1, WithConfig(cfg), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(titles, "|") != "Rolle||" {
		t.Errorf("titles = %q", titles)
	}

	titles, err = WeekTitles(ctx, out, 9, WithConfig(cfg), WithLogger(quietLogger()))
	if err != nil || len(titles) != 0 {
		t.Errorf("unknown week: titles = %q, err = %v", titles, err)
	}
}

func TestSearchMissingSnapshot(t *testing.T) {
	cfg := NewDefaultConfig()
	missing := filepath.Join(t.TempDir(), "none.db")
	_, err := Search(context.Background(), missing, "x", 5, WithConfig(cfg), WithLogger(quietLogger()))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
	if _, statErr := os.Stat(missing); statErr == nil {
		t.Error("read-only open must not create the file")
	}
}

func TestMigrateCommand(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = testutil.WriteTree(t, map[string]string{
		"weeks/01.yaml": "date: 2024-09-02T08:00:00\ndescription: x\nproofs: []\n",
	})
	report, err := Migrate(context.Background(), true, WithConfig(cfg), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Changes) != 1 {
		t.Errorf("changes = %+v", report.Changes)
	}
}

func TestRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}
