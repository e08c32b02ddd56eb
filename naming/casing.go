// Package naming holds the identifier conversions shared by every renderer:
// C snake_case to C# PascalCase, section name forms, shared-prefix inference
// and collision-free name allocation.
package naming

import (
	"strings"
	"unicode"
)

// PascalCase converts snake_case or kebab-case to PascalCase.
// The first letter of each part is upper-cased, the rest is kept as-is.
func PascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}
	return result.String()
}

// TypeName converts a C identifier to a C# type name, dropping a trailing
// "_t" typedef suffix when stripTypedef is set.
// "lrtc_rtp_sender_t" -> "LrtcRtpSender", "lrtc_ice_candidate_cb" -> "LrtcIceCandidateCb"
func TypeName(cIdentifier string, stripTypedef bool) string {
	value := cIdentifier
	if stripTypedef {
		value = strings.TrimSuffix(value, "_t")
	}
	return PascalCase(value)
}

// MemberName converts an upper-case C constant remainder ("PEER_CONNECTED")
// to a C# member name ("PeerConnected").
func MemberName(s string) string {
	name := PascalCase(strings.ToLower(strings.Trim(s, "_")))
	if name == "" {
		return ""
	}
	if r := []rune(name)[0]; unicode.IsDigit(r) {
		return "_" + name
	}
	return name
}

// SnakeCase converts PascalCase, camelCase or dotted names to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func SnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if result.Len() > 0 && !strings.HasSuffix(result.String(), "_") {
				result.WriteRune('_')
			}
			continue
		}

		// Check if we need to insert underscore before this character
		if i > 0 && unicode.IsUpper(r) && result.Len() > 0 && !strings.HasSuffix(result.String(), "_") {
			// Don't insert underscore if previous char was uppercase (acronym)
			// unless next char is lowercase (end of acronym)
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if !prevUpper || nextLower {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.TrimSuffix(strings.ToLower(result.String()), "_")
}

// KebabCase is SnakeCase with hyphens.
func KebabCase(s string) string {
	return strings.ReplaceAll(SnakeCase(s), "_", "-")
}

// CompactPascal removes every non-alphanumeric rune after PascalCasing each
// dotted or separated part: "RtpSender.Abi" -> "RtpSenderAbi".
func CompactPascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}
	return result.String()
}
