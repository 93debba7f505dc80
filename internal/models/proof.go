// Package models defines the domain types for Kholles.
package models

import (
	"cmp"
	"slices"
)

// ProofID identifies a proof across the whole content tree.
type ProofID uint64

// Proof is a single authored document: front matter metadata plus a
// markdown body.
type Proof struct {
	ID      ProofID  `json:"pid"`
	Title   string   `json:"title"`
	Note    *string  `json:"note,omitempty"`
	Authors []string `json:"authors"`
	Date    Date     `json:"date"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// Renderer converts markdown source into display markup.
type Renderer interface {
	Render(markdown string) string
}

// Rendered returns a copy of p whose Content has been converted by r.
func (p Proof) Rendered(r Renderer) Proof {
	p.Content = r.Render(p.Content)
	return p
}

// NewestFirst orders proofs by date, then id, both descending.
func NewestFirst(a, b Proof) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// SortProofs sorts ps in place, newest first.
func SortProofs(ps []Proof) {
	slices.SortFunc(ps, NewestFirst)
}
