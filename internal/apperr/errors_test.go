package apperr

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestDateFormatIsSchemaViolation(t *testing.T) {
	if !errors.Is(ErrDateFormat, ErrSchema) {
		t.Fatal("date format mismatch should be a schema violation")
	}
	if errors.Is(ErrSchema, ErrDateFormat) {
		t.Fatal("schema violation should not be a date format mismatch")
	}
}

func TestAtPath_MessageAndKinds(t *testing.T) {
	err := AtPath("proofs/a.md", Kind(ErrIO, fs.ErrPermission))
	if !strings.Contains(err.Error(), "proofs/a.md") {
		t.Errorf("message %q should name the file", err)
	}
	if !errors.Is(err, ErrIO) {
		t.Error("expected ErrIO")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("expected underlying cause to be preserved")
	}
}

func TestAtPath_KeepsInnermostPath(t *testing.T) {
	inner := AtPath("inner.md", ErrSchema)
	outer := AtPath("outer", inner)
	var ce *ContentError
	if !errors.As(outer, &ce) {
		t.Fatal("expected ContentError")
	}
	if ce.Path != "inner.md" {
		t.Errorf("path = %q, want inner.md", ce.Path)
	}
}

func TestAtPath_Nil(t *testing.T) {
	if AtPath("x", nil) != nil {
		t.Error("nil error should stay nil")
	}
}
