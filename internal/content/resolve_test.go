package content

import (
	"reflect"
	"testing"

	"github.com/starford/kholles/internal/models"
)

func TestResolve_DanglingSlot(t *testing.T) {
	proofs := map[models.ProofID]models.Proof{
		1: {ID: 1, Title: "Un", Authors: []string{"a"}},
		3: {ID: 3, Title: "Trois", Authors: []string{"c"}},
	}
	week := models.Week{Number: 2, Proofs: []models.ProofID{1, 2, 3}}

	r := Resolve(week, proofs)
	if len(r.Proofs) != len(week.Proofs) {
		t.Fatalf("len = %d, want %d", len(r.Proofs), len(week.Proofs))
	}
	nils := 0
	for _, p := range r.Proofs {
		if p == nil {
			nils++
		}
	}
	if nils != 1 || r.Proofs[1] != nil {
		t.Errorf("expected exactly one nil at index 1, got %v", r.Proofs)
	}
	if r.Proofs[0].ID != 1 || r.Proofs[2].ID != 3 {
		t.Errorf("slots out of order: %v", r.Proofs)
	}
	if got := r.Dangling(); !reflect.DeepEqual(got, []models.ProofID{2}) {
		t.Errorf("dangling = %v, want [2]", got)
	}
}

func TestResolve_AuthorsDedupedAndSorted(t *testing.T) {
	proofs := map[models.ProofID]models.Proof{
		1: {ID: 1, Authors: []string{"b", "a"}},
		2: {ID: 2, Authors: []string{"a", "c"}},
	}
	r := Resolve(models.Week{Proofs: []models.ProofID{1, 2}}, proofs)
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(r.Authors, want) {
		t.Errorf("authors = %v, want %v", r.Authors, want)
	}
}

func TestResolve_RepeatedReference(t *testing.T) {
	proofs := map[models.ProofID]models.Proof{1: {ID: 1, Authors: []string{"a"}}}
	r := Resolve(models.Week{Proofs: []models.ProofID{1, 1}}, proofs)
	if len(r.Proofs) != 2 || r.Proofs[0] == nil || r.Proofs[1] == nil {
		t.Fatalf("proofs = %v", r.Proofs)
	}
	if len(r.Authors) != 1 {
		t.Errorf("authors = %v", r.Authors)
	}
}

func TestResolve_EmptyWeek(t *testing.T) {
	r := Resolve(models.Week{Number: 1}, nil)
	if len(r.Proofs) != 0 || r.Authors == nil || len(r.Authors) != 0 {
		t.Errorf("resolution = %+v", r)
	}
	if r.Dangling() != nil {
		t.Errorf("dangling = %v", r.Dangling())
	}
}

func TestResolve_DoesNotAliasMap(t *testing.T) {
	proofs := map[models.ProofID]models.Proof{1: {ID: 1, Title: "orig"}}
	r := Resolve(models.Week{Proofs: []models.ProofID{1}}, proofs)
	r.Proofs[0].Title = "changed"
	if proofs[1].Title != "orig" {
		t.Error("resolution must not write back into the proof map")
	}
}
