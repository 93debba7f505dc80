package models

import (
	"cmp"
	"slices"
)

// WeekNumber is derived from a week descriptor's file name.
type WeekNumber uint8

// WeekBody is the content of a week descriptor before it is numbered.
type WeekBody struct {
	Date        Date      `json:"date"`
	Description string    `json:"description"`
	Proofs      []ProofID `json:"proofs"`
}

// Numbered attaches an externally derived number to the body.
func (b WeekBody) Numbered(n WeekNumber) Week {
	return Week{
		Number:      n,
		Date:        b.Date,
		Description: b.Description,
		Proofs:      b.Proofs,
	}
}

// Week groups proofs under a numbered calendar period. Proofs holds soft
// references: ids without a matching proof are valid.
type Week struct {
	Number      WeekNumber `json:"number"`
	Date        Date       `json:"date"`
	Description string     `json:"description"`
	Proofs      []ProofID  `json:"proofs"`
}

// SortWeeks sorts ws by ascending number.
func SortWeeks(ws []Week) {
	slices.SortFunc(ws, func(a, b Week) int { return cmp.Compare(a.Number, b.Number) })
}
