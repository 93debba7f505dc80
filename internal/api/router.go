package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kholles/internal/catalog"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalog.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/proofs", h.ListProofs)
	r.Get("/proofs/{id}", h.GetProof)

	r.Get("/weeks", h.ListWeeks)
	r.Get("/weeks/newest", h.NewestWeek)
	r.Get("/weeks/{number}", h.GetWeek)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
