package abi

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/interopgen/ctype"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/hints"
	"github.com/teranos/interopgen/internal/doc"
	"github.com/teranos/interopgen/logger"
	"github.com/teranos/interopgen/naming"
)

// RootPath prefixes every error location inside an ABI description.
const RootPath = "idl"

// ParseJSON decodes and parses an ABI description.
func ParseJSON(data []byte, log *zap.SugaredLogger) (*Model, error) {
	root, err := doc.DecodeJSON(data, RootPath)
	if err != nil {
		return nil, err
	}
	return Parse(root, log)
}

// Parse builds the model from a decoded ABI description. Optional sections
// that are absent yield empty collections; functions is required.
func Parse(root doc.Node, log *zap.SugaredLogger) (*Model, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if _, err := root.Object(); err != nil {
		return nil, err
	}

	m := NewModel()
	var err error
	if m.Target, err = root.Key("target").OptString(""); err != nil {
		return nil, err
	}

	if err := parseBindings(m, root.Key("bindings").Key("interop")); err != nil {
		return nil, err
	}

	header := root.Key("header_types")
	if _, err := header.OptObject(); err != nil {
		return nil, err
	}
	if m.Enums, err = parseEnums(header.Key("enums")); err != nil {
		return nil, err
	}
	if m.Structs, err = parseStructs(header.Key("structs")); err != nil {
		return nil, err
	}
	if m.Callbacks, err = parseCallbackTypedefs(header.Key("callback_typedefs"), m.CallTokens, log); err != nil {
		return nil, err
	}
	if m.Constants, err = parseConstants(header.Key("constants")); err != nil {
		return nil, err
	}

	functions := root.Key("functions")
	if functions.IsNull() {
		return nil, errors.Structural(functions.Path, "required array is missing")
	}
	if m.Functions, err = parseFunctions(functions); err != nil {
		return nil, err
	}

	m.reindex()

	if m.ModulePrefix == "" {
		m.ModulePrefix = InferModulePrefix(m.FunctionNames())
	}
	reportUnknownOverrides(m, log)

	log.Debugw("Parsed ABI description",
		"target", m.Target,
		"enums", len(m.Enums),
		"structs", len(m.Structs),
		"callbacks", len(m.Callbacks),
		"constants", len(m.Constants),
		"functions", len(m.Functions),
		"module_prefix", m.ModulePrefix)
	return m, nil
}

// InferModulePrefix takes the first '_'-terminated segment of the functions'
// common prefix: {"lrtc_rtp_sender_release", "lrtc_rtp_sender_set_x"} -> "lrtc_".
func InferModulePrefix(functionNames []string) string {
	common := naming.CommonPrefix(functionNames)
	idx := strings.IndexByte(common, '_')
	if idx <= 0 {
		return ""
	}
	return common[:idx+1]
}

func parseBindings(m *Model, interop doc.Node) error {
	if _, err := interop.OptObject(); err != nil {
		return err
	}

	var err error
	if m.CallbackFieldOverrides, err = interop.Key("callback_field_overrides").StringMap(); err != nil {
		return err
	}
	if m.StructFieldOverrides, err = interop.Key("struct_field_overrides").StringMap(); err != nil {
		return err
	}
	if m.StructLayoutOverrides, err = parseLayouts(interop.Key("struct_layout_overrides")); err != nil {
		return err
	}
	if m.CallTokens, err = interop.Key("callback_typedef_call_tokens").StringList(); err != nil {
		return err
	}
	suffixes, err := interop.Key("callback_struct_suffixes").StringList()
	if err != nil {
		return err
	}
	if len(suffixes) > 0 {
		m.CallbackSuffixes = suffixes
	}

	settings := []struct {
		key string
		dst *string
	}{
		{"namespace", &m.Namespace},
		{"constants_class", &m.ConstantsClass},
		{"native_class", &m.NativeClass},
		{"module_prefix", &m.ModulePrefix},
		{"callback_type_suffix", &m.CallbackTypeSuffix},
	}
	for _, s := range settings {
		if *s.dst, err = interop.Key(s.key).OptString(*s.dst); err != nil {
			return err
		}
	}

	m.OutputHints, err = hints.ParseConfig(interop.Key("output_hints"))
	return err
}

func parseLayouts(n doc.Node) (map[string]Layout, error) {
	keys, err := n.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Layout, len(keys))
	for _, name := range keys {
		entry := n.Key(name)
		layout := Layout{Kind: "Sequential"}
		switch {
		case entry.IsNumber():
			if layout.Pack, err = entry.Int(); err != nil {
				return nil, err
			}
			if layout.Pack <= 0 {
				return nil, errors.Structural(entry.Path, "pack must be a positive integer, got %d", layout.Pack)
			}
		case entry.IsObject():
			kind, err := entry.Key("layout").OptString(layout.Kind)
			if err != nil {
				return nil, err
			}
			layout.Kind = strings.TrimPrefix(kind, "LayoutKind.")
			if pack := entry.Key("pack"); !pack.IsNull() {
				if layout.Pack, err = pack.Int(); err != nil {
					return nil, err
				}
				if layout.Pack <= 0 {
					return nil, errors.Structural(pack.Path, "pack must be a positive integer, got %d", layout.Pack)
				}
			}
		default:
			return nil, errors.Structural(entry.Path, "layout override must be a pack integer or an object")
		}
		out[name] = layout
	}
	return out, nil
}

func parseEnums(n doc.Node) ([]Enum, error) {
	names, err := n.Keys()
	if err != nil {
		return nil, err
	}
	enums := make([]Enum, 0, len(names))
	for _, name := range names {
		entry := n.Key(name)
		if _, err := entry.Object(); err != nil {
			return nil, err
		}
		members, err := entry.Key("members").OptArray()
		if err != nil {
			return nil, err
		}
		e := Enum{Name: name}
		for _, item := range members {
			member, err := parseEnumMember(item)
			if err != nil {
				return nil, err
			}
			if member.Name == "" {
				continue
			}
			e.Members = append(e.Members, member)
		}
		enums = append(enums, e)
	}
	return enums, nil
}

// parseEnumMember accepts "NAME" or {name, value}; value may be a number or
// a string expression.
func parseEnumMember(item doc.Node) (EnumMember, error) {
	if s, ok := item.Value.(string); ok {
		return EnumMember{Name: strings.TrimSpace(s)}, nil
	}
	if _, err := item.Object(); err != nil {
		return EnumMember{}, err
	}
	name, err := item.Key("name").OptString("")
	if err != nil {
		return EnumMember{}, err
	}
	member := EnumMember{Name: strings.TrimSpace(name)}
	if value := item.Key("value"); !value.IsNull() {
		if member.Value, err = value.Scalar(); err != nil {
			return EnumMember{}, err
		}
		member.Value = strings.TrimSpace(member.Value)
		member.HasValue = member.Value != ""
	}
	return member, nil
}

func parseStructs(n doc.Node) ([]Struct, error) {
	names, err := n.Keys()
	if err != nil {
		return nil, err
	}
	structs := make([]Struct, 0, len(names))
	for _, name := range names {
		entry := n.Key(name)
		if _, err := entry.Object(); err != nil {
			return nil, err
		}
		fields, err := entry.Key("fields").OptArray()
		if err != nil {
			return nil, err
		}
		s := Struct{Name: name}
		for _, item := range fields {
			if _, err := item.Object(); err != nil {
				return nil, err
			}
			fieldName, err := item.Key("name").OptString("")
			if err != nil {
				return nil, err
			}
			decl, err := item.Key("declaration").OptString("")
			if err != nil {
				return nil, err
			}
			fieldName, decl = strings.TrimSpace(fieldName), strings.TrimSpace(decl)
			if fieldName == "" || decl == "" {
				continue
			}
			s.Fields = append(s.Fields, Field{Name: fieldName, Declaration: decl})
		}
		structs = append(structs, s)
	}
	return structs, nil
}

// parseCallbackTypedefs accepts declarations as strings or {declaration}
// objects. Declarations outside the typedef grammar, or with a calling
// convention token that is not configured, are skipped.
func parseCallbackTypedefs(n doc.Node, tokens []string, log *zap.SugaredLogger) ([]ctype.Signature, error) {
	items, err := n.OptArray()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(items))
	var out []ctype.Signature
	for _, item := range items {
		var decl string
		switch {
		case item.IsObject():
			if decl, err = item.Key("declaration").String(); err != nil {
				return nil, err
			}
		default:
			if decl, err = item.String(); err != nil {
				return nil, err
			}
		}
		sig, ok := ctype.ParseTypedef(decl, tokens)
		if !ok {
			log.Debugw("Skipping callback typedef outside the supported grammar", logger.FieldPath, item.Path, logger.FieldDeclaration, decl)
			continue
		}
		if seen[sig.Name] {
			log.Debugw("Skipping duplicate callback typedef", logger.FieldPath, item.Path, logger.FieldName, sig.Name)
			continue
		}
		seen[sig.Name] = true
		out = append(out, sig)
	}
	return out, nil
}

func parseConstants(n doc.Node) ([]Constant, error) {
	names, err := n.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]Constant, 0, len(names))
	for _, name := range names {
		value, err := n.Key(name).Scalar()
		if err != nil {
			return nil, err
		}
		out = append(out, Constant{Name: name, Value: strings.TrimSpace(value)})
	}
	return out, nil
}

func parseFunctions(n doc.Node) ([]Function, error) {
	items, err := n.Array()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string, len(items))
	out := make([]Function, 0, len(items))
	for _, item := range items {
		if _, err := item.Object(); err != nil {
			return nil, err
		}
		name, err := item.Key("name").String()
		if err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Structural(item.Key("name").Path, "function name is empty")
		}
		if first, dup := seen[name]; dup {
			return nil, errors.Uniqueness(item.Path, "function %s is already declared at %s", name, first)
		}
		seen[name] = item.Path

		fn := Function{Name: name}
		ret := item.Key("c_return_type")
		if ret.IsNull() {
			ret = item.Key("return_type")
		}
		if fn.Return, err = ret.OptString("void"); err != nil {
			return nil, err
		}
		fn.Return = ctype.Normalize(fn.Return)
		if fn.Params, err = parseFunctionParams(item.Key("parameters")); err != nil {
			return nil, err
		}
		if fn.Deprecated, err = item.Key("deprecated").OptBool(false); err != nil {
			return nil, err
		}
		if fn.Variadic, err = item.Key("variadic").OptBool(false); err != nil {
			return nil, err
		}
		for _, p := range fn.Params {
			fn.Variadic = fn.Variadic || p.Variadic
		}
		out = append(out, fn)
	}
	return out, nil
}

// parseFunctionParams accepts the structured [{name, c_type, variadic}] form
// or a raw C parameter list string.
func parseFunctionParams(n doc.Node) ([]ctype.Param, error) {
	if s, ok := n.Value.(string); ok {
		return ctype.ParseParams(s), nil
	}
	items, err := n.OptArray()
	if err != nil {
		return nil, err
	}
	params := make([]ctype.Param, 0, len(items))
	for idx, item := range items {
		if _, err := item.Object(); err != nil {
			return nil, err
		}
		name, err := item.Key("name").OptString("")
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = fmt.Sprintf("arg%d", idx)
		}
		typ, err := item.Key("c_type").OptString("void")
		if err != nil {
			return nil, err
		}
		variadic, err := item.Key("variadic").OptBool(false)
		if err != nil {
			return nil, err
		}
		typ = ctype.Normalize(typ)
		variadic = variadic || typ == "..."
		params = append(params, ctype.Param{Name: name, Type: typ, Variadic: variadic})
	}
	return params, nil
}

// reportUnknownOverrides logs overrides that name nothing in the model.
// They are ignored, never fatal.
func reportUnknownOverrides(m *Model, log *zap.SugaredLogger) {
	for key := range m.StructFieldOverrides {
		structName, fieldName, ok := strings.Cut(key, ".")
		s, found := m.Struct(structName)
		if !ok || !found {
			log.Debugw("Ignoring struct field override for unknown struct", "key", key)
			continue
		}
		if _, found := s.Field(fieldName); !found {
			log.Debugw("Ignoring struct field override for unknown field", "key", key)
		}
	}
	for name := range m.StructLayoutOverrides {
		if !m.HasStruct(name) {
			log.Debugw("Ignoring layout override for unknown struct", "struct", name)
		}
	}
	for key := range m.CallbackFieldOverrides {
		if !m.callbackFieldExists(key) {
			log.Debugw("Ignoring callback field override for unknown field", "key", key)
		}
	}
}

func (m *Model) callbackFieldExists(key string) bool {
	structName, fieldName, qualified := strings.Cut(key, ".")
	for _, s := range m.Structs {
		if !m.IsCallbackStruct(s.Name) {
			continue
		}
		if qualified {
			if s.Name != structName {
				continue
			}
		} else {
			fieldName = key
		}
		if _, ok := s.Field(fieldName); ok {
			return true
		}
	}
	return false
}
