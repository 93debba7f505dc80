package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/catalog"
	"github.com/starford/kholles/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps service errors to responses. Content errors carry the
// offending file path and are shown as-is so the author can fix the file.
func writeError(w http.ResponseWriter, op string, err error) {
	var ce *apperr.ContentError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.As(err, &ce):
		slog.Error(op+" failed", slog.String("path", ce.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListProofs handles GET /api/proofs.
//
//	@Summary		List proofs, newest first
//	@Tags			proofs
//	@Produce		json
//	@Success		200		{object}	ProofListResponse
//	@Security		BearerAuth
//	@Router			/proofs [get]
func (h *Handler) ListProofs(w http.ResponseWriter, r *http.Request) {
	proofs, err := h.svc.ListProofs(r.Context())
	if err != nil {
		writeError(w, "list proofs", err)
		return
	}
	items := make([]ProofListItem, len(proofs))
	for i, p := range proofs {
		items[i] = newProofListItem(p)
	}
	writeJSON(w, http.StatusOK, ProofListResponse{Proofs: items, Total: len(items)})
}

// GetProof handles GET /api/proofs/{id}.
//
//	@Summary		Get a proof with its rendered body
//	@Tags			proofs
//	@Produce		json
//	@Param			id	path		int	true	"Proof id"
//	@Success		200	{object}	ProofDetail
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/proofs/{id} [get]
func (h *Handler) GetProof(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid proof id"))
		return
	}
	proof, err := h.svc.RenderProof(r.Context(), models.ProofID(id))
	if err != nil {
		writeError(w, "get proof", err)
		return
	}
	writeJSONWithETag(w, r, proof)
}

// ListWeeks handles GET /api/weeks.
//
//	@Summary		List weeks by number
//	@Tags			weeks
//	@Produce		json
//	@Success		200	{object}	WeekListResponse
//	@Security		BearerAuth
//	@Router			/weeks [get]
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.svc.ListWeeks(r.Context())
	if err != nil {
		writeError(w, "list weeks", err)
		return
	}
	writeJSON(w, http.StatusOK, WeekListResponse{Weeks: weeks})
}

// GetWeek handles GET /api/weeks/{number}.
//
//	@Summary		Get a week with its resolved proofs
//	@Tags			weeks
//	@Produce		json
//	@Param			number	path		int	true	"Week number"
//	@Success		200		{object}	WeekDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/weeks/{number} [get]
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 8)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid week number"))
		return
	}
	view, err := h.svc.GetWeek(r.Context(), models.WeekNumber(n))
	if err != nil {
		writeError(w, "get week", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// NewestWeek handles GET /api/weeks/newest.
//
//	@Summary		Get the highest-numbered week
//	@Tags			weeks
//	@Produce		json
//	@Success		200	{object}	WeekDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/weeks/newest [get]
func (h *Handler) NewestWeek(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.NewestWeek(r.Context())
	if err != nil {
		writeError(w, "newest week", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
