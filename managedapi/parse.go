package managedapi

import (
	"strings"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/hints"
	"github.com/teranos/interopgen/internal/doc"
)

// ParseJSON decodes and parses a managed-API description.
func ParseJSON(data []byte) (*Model, error) {
	root, err := doc.DecodeJSON(data, RootPath)
	if err != nil {
		return nil, err
	}
	return Parse(root)
}

// Parse validates the schema header and reads every directive. Cross-checks
// against the ABI model happen in Validate.
func Parse(root doc.Node) (*Model, error) {
	if _, err := root.Object(); err != nil {
		return nil, err
	}

	version := root.Key("schema_version")
	v, err := version.Int()
	if err != nil {
		return nil, errors.Structural(version.Path, "schema_version must be %d", SchemaVersion)
	}
	if v != SchemaVersion {
		return nil, errors.Structural(version.Path, "schema_version must be %d, got %d", SchemaVersion, v)
	}

	m := &Model{}
	ns := root.Key("namespace")
	if m.Namespace, err = ns.OptString(""); err != nil {
		return nil, err
	}
	if m.Namespace = strings.TrimSpace(m.Namespace); m.Namespace == "" {
		return nil, errors.Structural(ns.Path, "namespace must be a non-empty string")
	}

	if m.Usings, err = root.Key("usings").StringList(); err != nil {
		return nil, err
	}
	if len(m.Usings) == 0 {
		m.Usings = append([]string(nil), DefaultUsings...)
	}
	if m.RequiredNativeFunctions, err = root.Key("required_native_functions").StringList(); err != nil {
		return nil, err
	}

	if m.Callbacks, err = parseCallbackClasses(root.Key("callbacks")); err != nil {
		return nil, err
	}
	if m.Builder, err = parseOptionalClass(root.Key("builder")); err != nil {
		return nil, err
	}
	if m.PeerConnectionAsync, err = parseOptionalClass(root.Key("peer_connection_async")); err != nil {
		return nil, err
	}
	if m.HandleAPI, err = parseHandleAPI(root.Key("handle_api")); err != nil {
		return nil, err
	}
	if m.CustomSections, err = parseCustomSections(root.Key("custom_sections")); err != nil {
		return nil, err
	}
	if m.AutoSurface, err = parseAutoSurface(root.Key("auto_abi_surface")); err != nil {
		return nil, err
	}
	if m.OutputHints, err = hints.ParseConfig(root.Key("output_hints")); err != nil {
		return nil, err
	}

	if err := m.checkClassNames(); err != nil {
		return nil, err
	}
	return m, nil
}

func requiredString(n doc.Node) (string, error) {
	s, err := n.String()
	if err != nil {
		return "", err
	}
	if s = strings.TrimSpace(s); s == "" {
		return "", errors.Structural(n.Path, "must not be empty")
	}
	return s, nil
}

func parseClass(n doc.Node) (Class, error) {
	if _, err := n.Object(); err != nil {
		return Class{}, err
	}
	c := Class{Path: n.Path}
	var err error
	if c.Class, err = requiredString(n.Key("class")); err != nil {
		return Class{}, err
	}
	optional := []struct {
		key string
		def string
		dst *string
	}{
		{"namespace", "", &c.Namespace},
		{"access", DefaultAccess, &c.Access},
		{"modifiers", DefaultModifiers, &c.Modifiers},
		{"summary", "", &c.Summary},
	}
	for _, o := range optional {
		if *o.dst, err = n.Key(o.key).OptString(o.def); err != nil {
			return Class{}, err
		}
		*o.dst = strings.TrimSpace(*o.dst)
	}
	methods := n.Key("methods")
	if methods.IsNull() {
		methods = n.Key("members")
	}
	if c.Methods, err = ParseMethodItems(methods); err != nil {
		return Class{}, err
	}
	return c, nil
}

func parseOptionalClass(n doc.Node) (*Class, error) {
	if n.IsNull() {
		return nil, nil
	}
	c, err := parseClass(n)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func parseHandleAPI(n doc.Node) ([]Class, error) {
	items, err := n.OptArray()
	if err != nil {
		return nil, err
	}
	out := make([]Class, 0, len(items))
	for _, item := range items {
		c, err := parseClass(item)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCustomSections(n doc.Node) ([]CustomSection, error) {
	items, err := n.OptArray()
	if err != nil {
		return nil, err
	}
	out := make([]CustomSection, 0, len(items))
	for _, item := range items {
		c, err := parseClass(item)
		if err != nil {
			return nil, err
		}
		s := CustomSection{Class: c, Path: item.Path}
		if s.Section, err = requiredString(item.Key("section")); err != nil {
			return nil, err
		}
		if s.OutputHint, err = item.Key("output_hint").OptString(""); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func parseCallbackClasses(n doc.Node) ([]CallbackClass, error) {
	items, err := n.OptArray()
	if err != nil {
		return nil, err
	}
	out := make([]CallbackClass, 0, len(items))
	for _, item := range items {
		c, err := parseClass(item)
		if err != nil {
			return nil, err
		}
		cb := CallbackClass{
			Class:   c.Class,
			Access:  c.Access,
			Summary: c.Summary,
			Methods: c.Methods,
			Path:    item.Path,
		}
		if cb.NativeStruct, err = requiredString(item.Key("native_struct")); err != nil {
			return nil, err
		}
		fields, err := item.Key("fields").OptArray()
		if err != nil {
			return nil, err
		}
		for _, field := range fields {
			f, err := parseCallbackField(field)
			if err != nil {
				return nil, err
			}
			cb.Fields = append(cb.Fields, f)
		}
		out = append(out, cb)
	}
	return out, nil
}

func parseCallbackField(n doc.Node) (CallbackField, error) {
	if _, err := n.Object(); err != nil {
		return CallbackField{}, err
	}
	f := CallbackField{Path: n.Path}
	required := []struct {
		key string
		dst *string
	}{
		{"managed_name", &f.ManagedName},
		{"managed_type", &f.ManagedType},
		{"backing_name", &f.BackingName},
		{"backing_type", &f.BackingType},
		{"native_field", &f.NativeField},
	}
	var err error
	for _, r := range required {
		if *r.dst, err = requiredString(n.Key(r.key)); err != nil {
			return CallbackField{}, err
		}
	}
	lines, err := TextLines(n.Key("assignment"))
	if err != nil {
		return CallbackField{}, err
	}
	if f.Assignment = Reindent(lines); len(f.Assignment) == 0 {
		return CallbackField{}, errors.Structural(n.Key("assignment").Path, "assignment must not be empty")
	}
	return f, nil
}

func parseAutoSurface(n doc.Node) (AutoSurface, error) {
	s := AutoSurface{
		MethodPrefix:  DefaultMethodPrefix,
		SectionSuffix: DefaultSectionSuffix,
		Facade: Facade{
			Access:        DefaultAccess,
			ClassSuffix:   DefaultFacadeClassSuffix,
			SectionSuffix: DefaultFacadeSectionSuffix,
		},
	}
	if _, err := n.OptObject(); err != nil {
		return s, err
	}

	var err error
	if s.Enabled, err = n.Key("enabled").OptBool(false); err != nil {
		return s, err
	}
	if s.MethodPrefix, err = n.Key("method_prefix").OptString(s.MethodPrefix); err != nil {
		return s, err
	}
	if s.SectionSuffix, err = n.Key("section_suffix").OptString(s.SectionSuffix); err != nil {
		return s, err
	}
	if s.IncludeDeprecated, err = n.Key("include_deprecated").OptBool(false); err != nil {
		return s, err
	}

	f := n.Key("public_facade")
	if _, err := f.OptObject(); err != nil {
		return s, err
	}
	if s.Facade.Enabled, err = f.Key("enabled").OptBool(false); err != nil {
		return s, err
	}
	strs := []struct {
		key string
		dst *string
	}{
		{"access", &s.Facade.Access},
		{"class_suffix", &s.Facade.ClassSuffix},
		{"method_prefix", &s.Facade.MethodPrefix},
		{"section_suffix", &s.Facade.SectionSuffix},
	}
	for _, o := range strs {
		if *o.dst, err = f.Key(o.key).OptString(*o.dst); err != nil {
			return s, err
		}
	}
	if s.Facade.AllowIntPtr, err = f.Key("allow_int_ptr").OptBool(false); err != nil {
		return s, err
	}

	if s.Facade.Enabled && s.Facade.ClassSuffix == "" {
		return s, errors.Structural(f.Key("class_suffix").Path, "class_suffix must not be empty")
	}
	if s.Facade.Enabled && s.Facade.SectionSuffix == s.SectionSuffix {
		return s, errors.Uniqueness(f.Key("section_suffix").Path,
			"facade section suffix %q collides with the auto surface section suffix", s.SectionSuffix)
	}
	return s, nil
}

// checkClassNames rejects two class directives that declare the same class.
// Custom sections may extend any class, so they are not part of the check.
func (m *Model) checkClassNames() error {
	seen := map[string]string{}
	claim := func(name, path string) error {
		if first, dup := seen[name]; dup {
			return errors.Uniqueness(path, "class %s is already declared at %s", name, first)
		}
		seen[name] = path
		return nil
	}
	for _, cb := range m.Callbacks {
		if err := claim(cb.Class, cb.Path); err != nil {
			return err
		}
	}
	for _, c := range []*Class{m.Builder, m.PeerConnectionAsync} {
		if c == nil {
			continue
		}
		if err := claim(c.Class, c.Path); err != nil {
			return err
		}
	}
	for _, c := range m.HandleAPI {
		if err := claim(c.Class, c.Path); err != nil {
			return err
		}
	}

	sections := map[string]string{}
	for _, s := range m.CustomSections {
		if first, dup := sections[s.Section]; dup {
			return errors.Uniqueness(s.Path, "section %s is already declared at %s", s.Section, first)
		}
		sections[s.Section] = s.Path
	}
	return nil
}
