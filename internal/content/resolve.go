package content

import (
	"slices"

	"github.com/starford/kholles/internal/models"
)

// Resolution is a week joined against the proof collection.
type Resolution struct {
	Week models.Week
	// Proofs has one slot per entry of Week.Proofs; a nil slot is a dangling
	// reference.
	Proofs []*models.Proof
	// Authors lists the distinct authors of the resolved proofs, sorted.
	Authors []string
}

// Resolve joins week.Proofs against proofs. Ids without a matching proof
// resolve to nil and are not an error.
func Resolve(week models.Week, proofs map[models.ProofID]models.Proof) Resolution {
	slots := make([]*models.Proof, len(week.Proofs))
	seen := make(map[string]struct{})
	authors := []string{}

	for i, id := range week.Proofs {
		p, ok := proofs[id]
		if !ok {
			continue
		}
		slots[i] = &p
		for _, a := range p.Authors {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			authors = append(authors, a)
		}
	}
	slices.Sort(authors)

	return Resolution{Week: week, Proofs: slots, Authors: authors}
}

// Dangling returns the ids that did not resolve, in week order.
func (r Resolution) Dangling() []models.ProofID {
	var out []models.ProofID
	for i, p := range r.Proofs {
		if p == nil {
			out = append(out, r.Week.Proofs[i])
		}
	}
	return out
}
