package naming

import (
	"strconv"
	"strings"
	"unicode"
)

// CommonPrefix returns the longest prefix shared by every name.
func CommonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	prefix := names[0]
	for _, name := range names[1:] {
		i := 0
		for i < len(prefix) && i < len(name) && prefix[i] == name[i] {
			i++
		}
		prefix = prefix[:i]
		if prefix == "" {
			break
		}
	}
	return prefix
}

// TrimToSeparator cuts prefix back to (and including) its last sep.
// A prefix without sep yields "".
func TrimToSeparator(prefix string, sep byte) string {
	idx := strings.LastIndexByte(prefix, sep)
	if idx < 0 {
		return ""
	}
	return prefix[:idx+1]
}

// UnderscorePrefix is the common prefix of names trimmed to the last '_'.
// {"COLOR_RED", "COLOR_GREEN"} -> "COLOR_"
func UnderscorePrefix(names []string) string {
	return TrimToSeparator(CommonPrefix(names), '_')
}

// StripPrefix removes prefix from name unless that would leave nothing.
func StripPrefix(name, prefix string) string {
	if prefix == "" || !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return name
	}
	return name[len(prefix):]
}

// PascalPrefix is the common prefix of PascalCase names cut back to a word
// boundary: {"LrtcIceCandidateCb", "LrtcIdleCb"} -> "Lrtc".
func PascalPrefix(names []string) string {
	prefix := CommonPrefix(names)
	if prefix == "" {
		return ""
	}
	atBoundary := true
	for _, name := range names {
		if len(name) > len(prefix) && !unicode.IsUpper(rune(name[len(prefix)])) {
			atBoundary = false
			break
		}
	}
	if atBoundary {
		return prefix
	}
	for i := len(prefix) - 1; i > 0; i-- {
		if unicode.IsUpper(rune(prefix[i])) {
			return prefix[:i]
		}
	}
	return ""
}

// NameSet allocates collision-free names within one scope. The zero value is
// not usable; create one with NewNameSet per class or per run.
type NameSet map[string]struct{}

// NewNameSet returns an empty set, optionally pre-seeded with reserved names.
func NewNameSet(reserved ...string) NameSet {
	s := make(NameSet, len(reserved))
	for _, name := range reserved {
		s[name] = struct{}{}
	}
	return s
}

// Claim returns base if unused, otherwise base2, base3, ... and records it.
func (s NameSet) Claim(base string) string {
	name := base
	for n := 2; ; n++ {
		if _, taken := s[name]; !taken {
			break
		}
		name = base + strconv.Itoa(n)
	}
	s[name] = struct{}{}
	return name
}

// Has reports whether name was claimed or reserved.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
