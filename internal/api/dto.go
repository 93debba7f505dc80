package api

import (
	"github.com/starford/kholles/internal/catalog"
	"github.com/starford/kholles/internal/models"
)

// ProofListItem is a proof without its body, as returned by list endpoints.
type ProofListItem struct {
	ID      models.ProofID `json:"pid" example:"12" validate:"required"`
	Title   string         `json:"title" example:"Théorème de Rolle" validate:"required"`
	Note    *string        `json:"note,omitempty"`
	Authors []string       `json:"authors" validate:"required"`
	Date    models.Date    `json:"date" validate:"required"`
	Tags    []string       `json:"tags" validate:"required"`
}

func newProofListItem(p models.Proof) ProofListItem {
	return ProofListItem{
		ID:      p.ID,
		Title:   p.Title,
		Note:    p.Note,
		Authors: p.Authors,
		Date:    p.Date,
		Tags:    p.Tags,
	}
}

// ProofListResponse wraps the proof listing, newest first.
type ProofListResponse struct {
	Proofs []ProofListItem `json:"proofs" validate:"required"`
	Total  int             `json:"total" example:"42" validate:"required"`
}

// ProofDetail is a proof with its raw markdown and rendered HTML.
type ProofDetail = catalog.RenderedProof

// WeekListResponse wraps the week listing in ascending number order.
type WeekListResponse struct {
	Weeks []models.Week `json:"weeks" validate:"required"`
}

// WeekDetail is a week with its resolved proofs. Proofs holds null for
// references to unknown proofs.
type WeekDetail = catalog.WeekView
