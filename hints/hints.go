// Package hints resolves the destination file of every generated section
// from output-hint patterns.
package hints

import (
	"path"
	"regexp"
	"strings"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/internal/doc"
	"github.com/teranos/interopgen/naming"
)

// DefaultPattern keeps the caller-supplied default file name.
const DefaultPattern = "{default}"

// Extension is appended to resolved names that lack it.
const Extension = ".cs"

// Config is the output_hints block of an input document.
type Config struct {
	Pattern                  string
	Sections                 map[string]string
	Prefix                   string
	Directory                string
	ApplyPrefixToExplicit    bool
	ApplyDirectoryToExplicit bool

	// Path is where the block came from, used in error messages.
	Path string

	set map[string]bool
}

// ParseConfig reads an output_hints object. A null node yields the zero
// configuration.
func ParseConfig(n doc.Node) (Config, error) {
	cfg := Config{Path: n.Path, Sections: map[string]string{}, set: map[string]bool{}}
	if n.IsNull() {
		return cfg, nil
	}
	if _, err := n.Object(); err != nil {
		return cfg, err
	}

	var err error
	strs := []struct {
		key string
		dst *string
	}{
		{"pattern", &cfg.Pattern},
		{"prefix", &cfg.Prefix},
		{"directory", &cfg.Directory},
	}
	for _, s := range strs {
		if n.Key(s.key).IsNull() {
			continue
		}
		if *s.dst, err = n.Key(s.key).String(); err != nil {
			return cfg, err
		}
		cfg.set[s.key] = true
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"apply_prefix_to_explicit", &cfg.ApplyPrefixToExplicit},
		{"apply_directory_to_explicit", &cfg.ApplyDirectoryToExplicit},
	}
	for _, f := range flags {
		if n.Key(f.key).IsNull() {
			continue
		}
		if *f.dst, err = n.Key(f.key).OptBool(false); err != nil {
			return cfg, err
		}
		cfg.set[f.key] = true
	}

	if cfg.Sections, err = n.Key("sections").StringMap(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge layers over on top of c. Keys present in over win; section entries
// are merged individually.
func (c Config) Merge(over Config) Config {
	out := c
	out.Sections = make(map[string]string, len(c.Sections)+len(over.Sections))
	for k, v := range c.Sections {
		out.Sections[k] = v
	}
	for k, v := range over.Sections {
		out.Sections[k] = v
	}
	out.set = make(map[string]bool)
	for k := range c.set {
		out.set[k] = true
	}
	for k := range over.set {
		out.set[k] = true
		switch k {
		case "pattern":
			out.Pattern = over.Pattern
		case "prefix":
			out.Prefix = over.Prefix
		case "directory":
			out.Directory = over.Directory
		case "apply_prefix_to_explicit":
			out.ApplyPrefixToExplicit = over.ApplyPrefixToExplicit
		case "apply_directory_to_explicit":
			out.ApplyDirectoryToExplicit = over.ApplyDirectoryToExplicit
		}
	}
	if over.set["pattern"] {
		out.Path = over.Path
	}
	return out
}

// Section describes one rendered unit to be placed.
type Section struct {
	Name      string
	Class     string
	Namespace string
	Default   string
}

// Resolver maps sections to file names.
type Resolver struct {
	cfg    Config
	target string
}

// NewResolver returns a resolver for the merged configuration and the
// generator-wide target identifier.
func NewResolver(cfg Config, target string) *Resolver {
	return &Resolver{cfg: cfg, target: target}
}

var tokenPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Resolve returns the sanitized, slash-separated relative file name.
func (r *Resolver) Resolve(s Section) (string, error) {
	pattern := r.cfg.Pattern
	source := r.cfg.Path + ".pattern"
	if pattern == "" {
		pattern = DefaultPattern
	}
	explicit, hasExplicit := r.cfg.Sections[s.Name]
	if hasExplicit {
		pattern = explicit
		source = r.cfg.Path + ".sections." + s.Name
	}

	tokens := r.tokens(s)
	var unknown []string
	name := tokenPattern.ReplaceAllStringFunc(pattern, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := tokens[key]
		if !ok {
			unknown = append(unknown, match)
			return match
		}
		return value
	})
	if len(unknown) > 0 {
		return "", errors.Structural(source, "unknown output hint token(s) %s", strings.Join(unknown, ", "))
	}

	if r.cfg.Prefix != "" && (!hasExplicit || r.cfg.ApplyPrefixToExplicit) {
		dir, file := path.Split(strings.ReplaceAll(name, `\`, "/"))
		name = dir + r.cfg.Prefix + file
	}
	if r.cfg.Directory != "" && (!hasExplicit || r.cfg.ApplyDirectoryToExplicit) {
		name = r.cfg.Directory + "/" + name
	}

	resolved := Sanitize(name)
	if resolved == "" || resolved == Extension {
		return "", errors.Structural(source, "output hint for section %q resolves to an empty file name", s.Name)
	}
	return resolved, nil
}

func (r *Resolver) tokens(s Section) map[string]string {
	class := s.Class
	if class == "" {
		class, _, _ = strings.Cut(s.Name, ".")
	}
	return map[string]string{
		"section":        s.Name,
		"section_pascal": naming.CompactPascal(s.Name),
		"section_snake":  naming.SnakeCase(s.Name),
		"section_kebab":  naming.KebabCase(s.Name),
		"section_path":   strings.ReplaceAll(s.Name, ".", "/"),
		"class":          class,
		"default":        s.Default,
		"default_stem":   Stem(s.Default),
		"namespace":      s.Namespace,
		"namespace_path": strings.ReplaceAll(s.Namespace, ".", "/"),
		"target":         r.target,
	}
}

// Stem strips a ".g.cs" or ".cs" suffix.
func Stem(name string) string {
	for _, suffix := range []string{".g" + Extension, Extension} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// Sanitize normalizes a resolved name into a relative slash path ending in
// the source extension.
func Sanitize(name string) string {
	text := strings.ReplaceAll(name, `\`, "/")
	text = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"|?*`, r) {
			return '_'
		}
		return r
	}, text)
	for strings.Contains(text, "//") {
		text = strings.ReplaceAll(text, "//", "/")
	}
	for {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(text, "./"), "/")
		if trimmed == text {
			break
		}
		text = trimmed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, Extension) {
		text += Extension
	}
	return text
}
