package logger

import "github.com/teranos/interopgen/errors"

// Standard field names for consistent structured logging across the generator.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Inputs
	FieldPath        = "path" // dotted input path, or output-relative file path
	FieldDeclaration = "declaration"
	FieldName        = "name"
	FieldFunction    = "function"

	// Outputs
	FieldTarget  = "target"
	FieldSection = "section"
	FieldFile    = "file"

	// Errors
	FieldError = "error"
	FieldKind  = "kind" // failure kind from errors.KindOf
	FieldHint  = "hint"

	// Timing and counts
	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
)

// ErrorFields returns the key/value pairs that describe a generation failure:
// the error itself, plus its kind, input path and hints when it carries them.
func ErrorFields(err error) []interface{} {
	fields := []interface{}{FieldError, err}
	if kind := errors.KindOf(err); kind != "" {
		fields = append(fields, FieldKind, kind)
	}
	if path := errors.PathOf(err); path != "" {
		fields = append(fields, FieldPath, path)
	}
	if hint := errors.FlattenHints(err); hint != "" {
		fields = append(fields, FieldHint, hint)
	}
	return fields
}
