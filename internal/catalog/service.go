// Package catalog answers the queries of the outer surfaces (HTTP API, MCP
// tools) by loading the content tree afresh for every call.
package catalog

import (
	"context"
	"maps"
	"slices"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/content"
	"github.com/starford/kholles/internal/models"
)

// Source is the part of content.Loader the catalog depends on.
type Source interface {
	Proofs() (map[models.ProofID]models.Proof, error)
	Weeks() (map[models.WeekNumber]models.Week, error)
}

var _ Source = (*content.Loader)(nil)

// RenderedProof is a proof together with its body rendered for display.
type RenderedProof struct {
	models.Proof
	HTML string `json:"html"`
}

// WeekView is a resolved week whose proofs have been rendered. A nil entry in
// Proofs is a dangling reference.
type WeekView struct {
	Week    models.Week     `json:"week"`
	Proofs  []*models.Proof `json:"proofs"`
	Authors []string        `json:"authors"`
}

// Service coordinates loading, resolution and rendering.
type Service struct {
	src      Source
	renderer models.Renderer
}

// NewService creates a new catalog service.
func NewService(src Source, renderer models.Renderer) *Service {
	return &Service{src: src, renderer: renderer}
}

// ListProofs returns every proof, newest first.
func (s *Service) ListProofs(_ context.Context) ([]models.Proof, error) {
	proofs, err := s.src.Proofs()
	if err != nil {
		return nil, err
	}
	out := slices.Collect(maps.Values(proofs))
	models.SortProofs(out)
	return nonNilSlice(out), nil
}

// GetProof returns the proof with the given id.
func (s *Service) GetProof(_ context.Context, id models.ProofID) (*models.Proof, error) {
	proofs, err := s.src.Proofs()
	if err != nil {
		return nil, err
	}
	p, ok := proofs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &p, nil
}

// RenderProof returns the proof with the given id and its rendered body.
func (s *Service) RenderProof(ctx context.Context, id models.ProofID) (*RenderedProof, error) {
	p, err := s.GetProof(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RenderedProof{Proof: *p, HTML: s.renderer.Render(p.Content)}, nil
}

// ListWeeks returns every week in ascending number order.
func (s *Service) ListWeeks(_ context.Context) ([]models.Week, error) {
	weeks, err := s.src.Weeks()
	if err != nil {
		return nil, err
	}
	out := slices.Collect(maps.Values(weeks))
	models.SortWeeks(out)
	return nonNilSlice(out), nil
}

// GetWeek returns the resolved view of week n.
func (s *Service) GetWeek(ctx context.Context, n models.WeekNumber) (*WeekView, error) {
	weeks, err := s.src.Weeks()
	if err != nil {
		return nil, err
	}
	w, ok := weeks[n]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.view(ctx, w)
}

// NewestWeek returns the resolved view of the highest-numbered week.
func (s *Service) NewestWeek(ctx context.Context) (*WeekView, error) {
	weeks, err := s.src.Weeks()
	if err != nil {
		return nil, err
	}
	if len(weeks) == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.view(ctx, weeks[slices.Max(slices.Collect(maps.Keys(weeks)))])
}

// Resolve loads the proof collection and resolves w against it without
// rendering.
func (s *Service) Resolve(_ context.Context, w models.Week) (content.Resolution, error) {
	proofs, err := s.src.Proofs()
	if err != nil {
		return content.Resolution{}, err
	}
	return content.Resolve(w, proofs), nil
}

func (s *Service) view(ctx context.Context, w models.Week) (*WeekView, error) {
	res, err := s.Resolve(ctx, w)
	if err != nil {
		return nil, err
	}
	for i, p := range res.Proofs {
		if p == nil {
			continue
		}
		rendered := p.Rendered(s.renderer)
		res.Proofs[i] = &rendered
	}
	return &WeekView{Week: res.Week, Proofs: res.Proofs, Authors: res.Authors}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
