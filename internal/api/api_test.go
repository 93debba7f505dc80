package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/kholles/internal/catalog"
	"github.com/starford/kholles/internal/content"
	"github.com/starford/kholles/internal/render"
	"github.com/starford/kholles/internal/testutil"
)

func sampleTree() map[string]string {
	return map[string]string{
		"proofs/1.md":   testutil.ProofDoc(1, "Rolle", "01/09/2024", []string{"b", "a"}, "# Rolle\n\nSoit *f*.\n"),
		"proofs/2.md":   testutil.ProofDoc(2, "Cauchy", "05/09/2024", []string{"a", "c"}, "Suite.\n"),
		"weeks/01.yaml": testutil.WeekDoc("02/09/2024", "Rentrée", 1),
		"weeks/02.yaml": testutil.WeekDoc("09/09/2024", "Suites", 2, 404, 1),
	}
}

// testEnv builds a content tree and a router over it. An empty authToken
// means auth is disabled.
func testEnv(t *testing.T, files map[string]string, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, files, authToken, nil)
}

func testEnvWithSSE(t *testing.T, files map[string]string, authToken string, sseHandler http.Handler) http.Handler {
	t.Helper()
	root := testutil.WriteTree(t, files)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	loader := content.NewLoader(root, content.WithLogger(logger))
	svc := catalog.NewService(loader, render.NewMarkdown())
	return NewRouter(svc, authToken != "", authToken, sseHandler)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListProofs(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	w := get(t, router, "/proofs")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ProofListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Proofs[0].ID != 2 || resp.Proofs[1].ID != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Proofs[0].Date.String() != "05/09/2024" {
		t.Errorf("date = %s", resp.Proofs[0].Date)
	}
	if strings.Contains(w.Body.String(), "Suite.") {
		t.Error("list should not include bodies")
	}
}

func TestGetProof(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	w := get(t, router, "/proofs/1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var p ProofDetail
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Title != "Rolle" || p.Content != "# Rolle\n\nSoit *f*.\n" {
		t.Errorf("proof = %+v", p)
	}
	if !strings.Contains(p.HTML, "<em>f</em>") {
		t.Errorf("html = %q", p.HTML)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestGetProof_NotModified(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	first := get(t, router, "/proofs/1")
	etag := first.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/proofs/1", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestGetProof_NotFound(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	if w := get(t, router, "/proofs/99"); w.Code != http.StatusNotFound {
		t.Errorf("missing proof = %d, want 404", w.Code)
	}
}

func TestGetProof_InvalidID(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	for _, id := range []string{"abc", "-1", "1.5"} {
		if w := get(t, router, "/proofs/"+id); w.Code != http.StatusBadRequest {
			t.Errorf("id %q = %d, want 400", id, w.Code)
		}
	}
}

func TestListWeeks(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	w := get(t, router, "/weeks")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp WeekListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Weeks) != 2 || resp.Weeks[0].Number != 1 || resp.Weeks[1].Number != 2 {
		t.Errorf("weeks = %+v", resp.Weeks)
	}
}

func TestGetWeek_DanglingIsNull(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	w := get(t, router, "/weeks/2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var raw struct {
		Proofs  []json.RawMessage `json:"proofs"`
		Authors []string          `json:"authors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw.Proofs) != 3 || string(raw.Proofs[1]) != "null" {
		t.Errorf("proofs = %s", w.Body.String())
	}
	if strings.Join(raw.Authors, ",") != "a,b,c" {
		t.Errorf("authors = %v", raw.Authors)
	}
}

func TestNewestWeek(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	w := get(t, router, "/weeks/newest")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var v WeekDetail
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.Week.Number != 2 {
		t.Errorf("newest = %d, want 2", v.Week.Number)
	}
}

func TestNewestWeek_Empty(t *testing.T) {
	router := testEnv(t, nil, "")
	if w := get(t, router, "/weeks/newest"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetWeek_BadNumber(t *testing.T) {
	router := testEnv(t, sampleTree(), "")
	for _, n := range []string{"x", "256"} {
		if w := get(t, router, "/weeks/"+n); w.Code != http.StatusBadRequest {
			t.Errorf("week %q = %d, want 400", n, w.Code)
		}
	}
	if w := get(t, router, "/weeks/9"); w.Code != http.StatusNotFound {
		t.Errorf("unknown week = %d, want 404", w.Code)
	}
}

func TestContentErrorNamesFile(t *testing.T) {
	files := sampleTree()
	files["proofs/broken.md"] = testutil.ProofDoc(3, "Broken", "2024-09-01", nil, "")
	router := testEnv(t, files, "")
	w := get(t, router, "/proofs")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "broken.md") {
		t.Errorf("body should name the file: %s", w.Body.String())
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, sampleTree(), "secret123")
	req := httptest.NewRequest(http.MethodGet, "/proofs", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	router := testEnv(t, sampleTree(), "secret123")
	if w := get(t, router, "/weeks?access_token=secret123"); w.Code != http.StatusOK {
		t.Errorf("query token = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, sampleTree(), "secret123")
	if w := get(t, router, "/proofs"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, sampleTree(), "secret123")
	req := httptest.NewRequest(http.MethodGet, "/proofs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, nil, "secret", sseStub())
	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, nil, "tok", sseStub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

func TestSSEEvents_NotMountedWithoutHandler(t *testing.T) {
	router := testEnv(t, nil, "")
	if w := get(t, router, "/events"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
