// Package ctype implements the small C declaration grammar the generator
// understands: type spelling normalization, pointer depth, parameter lists,
// callback typedefs, function-pointer fields and fixed-size array fields.
// It is not a C front end; declarations outside this subset are reported as
// not matching and the caller decides what that means.
package ctype

import (
	"regexp"
	"strings"
)

var (
	pointerSpacing = regexp.MustCompile(`\s*\*\s*`)
	qualifiers     = regexp.MustCompile(`\b(const|volatile|restrict)\b`)
	tagKeywords    = regexp.MustCompile(`\b(struct|enum)\s+`)
)

// Normalize collapses whitespace and removes the spacing around '*'.
// "const  lrtc_x_t *" -> "const lrtc_x_t*"
func Normalize(value string) string {
	text := strings.Join(strings.Fields(value), " ")
	text = pointerSpacing.ReplaceAllString(text, "*")
	return strings.TrimSpace(text)
}

// StripQualifiers removes const/volatile/restrict and struct/enum keywords.
// "const struct lrtc_x_t * const" -> "lrtc_x_t*"
func StripQualifiers(value string) string {
	text := Normalize(value)
	text = qualifiers.ReplaceAllString(text, " ")
	text = tagKeywords.ReplaceAllString(text, " ")
	return Normalize(text)
}

// Type is a native type reduced to its base name and pointer depth.
type Type struct {
	Base  string
	Depth int
}

// Parse reduces a native type spelling to base name and pointer depth.
func Parse(value string) Type {
	stripped := StripQualifiers(value)
	depth := strings.Count(stripped, "*")
	base := strings.TrimSpace(strings.ReplaceAll(stripped, "*", " "))
	return Type{Base: strings.Join(strings.Fields(base), " "), Depth: depth}
}

// String renders the canonical spelling ("lrtc_x_t*").
func (t Type) String() string {
	return t.Base + strings.Repeat("*", t.Depth)
}

// Equal compares two native type spellings on base name and pointer depth.
func Equal(a, b string) bool {
	return Parse(a) == Parse(b)
}

// SplitTopLevel splits on commas that are not nested inside () or [].
func SplitTopLevel(text string) []string {
	var parts []string
	var token strings.Builder
	depth := 0
	for _, ch := range text {
		if ch == ',' && depth == 0 {
			if piece := strings.TrimSpace(token.String()); piece != "" {
				parts = append(parts, piece)
			}
			token.Reset()
			continue
		}
		token.WriteRune(ch)
		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	if tail := strings.TrimSpace(token.String()); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}
