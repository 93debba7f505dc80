// Package apperr defines the error kinds shared by the content loaders and
// the layers that consume them.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrIO marks a directory or file that could not be listed or read.
	ErrIO = errors.New("io failure")
	// ErrSchema marks a structured block that is missing, malformed or of the wrong type.
	ErrSchema = errors.New("schema violation")
	// ErrDateFormat is a schema violation on a date value.
	ErrDateFormat = fmt.Errorf("%w: date format mismatch", ErrSchema)
	// ErrInvalidIdentifier marks a week file whose stem is not a week number.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrDuplicateIdentifier marks two files claiming the same identifier.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
)

// ContentError ties a loader failure to the file that caused it.
type ContentError struct {
	Path string
	Err  error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("error at file %s: %v", e.Path, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// AtPath wraps err with the offending path. Errors already carrying a path
// are returned unchanged so the innermost location wins.
func AtPath(path string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ContentError
	if errors.As(err, &ce) {
		return err
	}
	return &ContentError{Path: path, Err: err}
}

// Kind wraps cause with one of the sentinel kinds above.
func Kind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
