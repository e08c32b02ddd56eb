// Package errors provides error handling for interopgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Error marks used as the generator's failure taxonomy
//
// Every input problem is reported as a *PathError: a dotted path into the
// offending document plus one of the kind marks below.
//
//	return errors.Reference("managed_api.callbacks[2].fields[0]",
//	    "native field %q not found in struct %s", field, structName)
//
//	if errors.Is(err, errors.ErrConsistency) {
//	    // handle/release mismatch
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
)

// User-facing hints
var (
	WithHint     = crdb.WithHint
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is = crdb.Is
	As = crdb.As
)

// Failure kinds. Use these with errors.Is() to classify a generation failure.
var (
	// ErrStructural indicates invalid JSON, a wrong root kind or a missing/malformed required element
	ErrStructural = New("structural error")

	// ErrReference indicates an input names an entity absent from the model
	ErrReference = New("reference error")

	// ErrConsistency indicates two documents disagree (handle type vs release function)
	ErrConsistency = New("consistency error")

	// ErrUniqueness indicates a duplicate class or section name
	ErrUniqueness = New("uniqueness error")
)

// PathError locates a failure inside an input document.
type PathError struct {
	Path  string
	cause error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.cause.Error()
	}
	return e.Path + ": " + e.cause.Error()
}

// Unwrap exposes the marked cause so errors.Is matches the kind.
func (e *PathError) Unwrap() error { return e.cause }

// AtPath builds a PathError of the given kind.
func AtPath(kind error, path, format string, args ...interface{}) error {
	cause := crdb.Mark(crdb.NewWithDepthf(1, format, args...), kind)
	return &PathError{Path: path, cause: cause}
}

// Structural reports a structural failure at path.
func Structural(path, format string, args ...interface{}) error {
	return AtPath(ErrStructural, path, format, args...)
}

// Reference reports a dangling reference at path.
func Reference(path, format string, args ...interface{}) error {
	return AtPath(ErrReference, path, format, args...)
}

// Consistency reports a cross-document disagreement at path.
func Consistency(path, format string, args ...interface{}) error {
	return AtPath(ErrConsistency, path, format, args...)
}

// Uniqueness reports a duplicate name at path.
func Uniqueness(path, format string, args ...interface{}) error {
	return AtPath(ErrUniqueness, path, format, args...)
}

// PathOf returns the innermost document path recorded on err, or "".
func PathOf(err error) string {
	var pe *PathError
	if As(err, &pe) {
		return pe.Path
	}
	return ""
}

// KindOf names the failure kind of err ("structural", "reference", ...) or "" if unclassified.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrStructural):
		return "structural"
	case Is(err, ErrReference):
		return "reference"
	case Is(err, ErrConsistency):
		return "consistency"
	case Is(err, ErrUniqueness):
		return "uniqueness"
	}
	return ""
}
