package csharp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/ctype"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/naming"
)

// Interop section names.
const (
	SectionEnums           = "Interop.Enums"
	SectionConstants       = "Interop.Constants"
	SectionStructs         = "Interop.Structs"
	SectionDelegates       = "Interop.Delegates"
	SectionCallbackStructs = "Interop.CallbackStructs"
)

// InteropUsings are the usings of every interop section.
var InteropUsings = []string{"System", "System.Runtime.InteropServices"}

// InteropSections renders enums, constants, structs, delegates and callback
// structs in that order. Empty sections are left out. It fails when an array
// field length cannot be expressed as a SizeConst.
func InteropSections(m *abi.Model, delegates abi.DelegateSet) ([]Section, error) {
	constNames := ConstantNames(m)
	if err := CheckArrayLengths(m, constNames); err != nil {
		return nil, err
	}

	var plain, callbacks []abi.Struct
	for _, s := range m.Structs {
		if m.IsCallbackStruct(s.Name) {
			callbacks = append(callbacks, s)
		} else {
			plain = append(plain, s)
		}
	}

	var sections []Section
	add := func(name, class string, lines []string) {
		if len(lines) == 0 {
			return
		}
		sections = append(sections, Section{
			Name:      name,
			Class:     class,
			Namespace: m.Namespace,
			Usings:    InteropUsings,
			Lines:     lines,
			Origin:    abi.RootPath,
		})
	}

	add(SectionEnums, "Enums", RenderEnums(m.Enums))
	add(SectionConstants, m.ConstantsClass, RenderConstants(m, constNames))
	add(SectionStructs, "Structs", RenderStructs(m, plain, delegates, constNames))
	add(SectionDelegates, "Delegates", RenderDelegates(m, delegates))
	add(SectionCallbackStructs, "CallbackStructs", RenderStructs(m, callbacks, delegates, constNames))
	return sections, nil
}

// EnumMemberNames maps each enumerator to its C# member name after the
// shared '_'-bounded prefix is stripped.
func EnumMemberNames(e abi.Enum) []string {
	raw := make([]string, len(e.Members))
	for i, member := range e.Members {
		raw[i] = member.Name
	}
	prefix := naming.UnderscorePrefix(raw)

	used := naming.NewNameSet()
	names := make([]string, len(raw))
	for i, name := range raw {
		member := naming.MemberName(naming.StripPrefix(name, prefix))
		if member == "" {
			member = naming.MemberName(name)
		}
		if member == "" {
			member = "Value"
		}
		names[i] = used.Claim(Ident(member))
	}
	return names
}

// RenderEnums renders every enum, sorted by C name.
func RenderEnums(enums []abi.Enum) []string {
	var c code
	for _, e := range enums {
		names := EnumMemberNames(e)
		c.open("internal enum " + naming.TypeName(e.Name, true))
		for i, member := range e.Members {
			if member.HasValue {
				c.line(fmt.Sprintf("%s = %s,", names[i], member.Value))
			} else {
				c.line(names[i] + ",")
			}
		}
		c.close()
		c.blank()
	}
	return c.lines
}

// ConstantPrefix is the prefix stripped from constant names. With fewer
// than two constants the prefix comes from the function names instead, and
// applies only when every constant starts with it (ignoring case).
func ConstantPrefix(m *abi.Model) string {
	names := make([]string, len(m.Constants))
	for i, c := range m.Constants {
		names[i] = c.Name
	}
	if len(names) >= 2 {
		return naming.UnderscorePrefix(names)
	}
	prefix := naming.UnderscorePrefix(m.FunctionNames())
	if prefix == "" {
		return ""
	}
	for _, name := range names {
		if !strings.HasPrefix(strings.ToUpper(name), strings.ToUpper(prefix)) {
			return ""
		}
	}
	return prefix
}

// ConstantNames maps C constant names to C# member names.
func ConstantNames(m *abi.Model) map[string]string {
	prefix := ConstantPrefix(m)
	used := naming.NewNameSet()
	out := make(map[string]string, len(m.Constants))
	for _, c := range m.Constants {
		name := c.Name
		if prefix != "" && len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = name[len(prefix):]
		}
		member := naming.MemberName(name)
		if member == "" {
			member = naming.MemberName(c.Name)
		}
		out[c.Name] = used.Claim(Ident(member))
	}
	return out
}

// RenderConstants renders the constants class.
func RenderConstants(m *abi.Model, names map[string]string) []string {
	if len(m.Constants) == 0 {
		return nil
	}
	var c code
	c.open("internal static class " + m.ConstantsClass)
	for _, constant := range m.Constants {
		typ, literal, ok := ConstantLiteral(constant.Value)
		if !ok {
			c.line(fmt.Sprintf("// %s = %s is not a literal and was skipped", constant.Name, constant.Value))
			continue
		}
		c.line(fmt.Sprintf("public const %s %s = %s;", typ, names[constant.Name], literal))
	}
	c.close()
	return c.lines
}

// ConstantLiteral infers the C# type of a C literal and rewrites it.
// "16" -> int, "0xFFFFFFFFu" -> uint, "1.5f" -> float, "\"x\"" -> string.
func ConstantLiteral(raw string) (typ, literal string, ok bool) {
	text := unparen(raw)
	switch {
	case text == "":
		return "", "", false
	case len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"':
		return "string", text, true
	case len(text) >= 3 && text[0] == '\'' && text[len(text)-1] == '\'':
		return "char", text, true
	case text == "true" || text == "false":
		return "bool", text, true
	}

	negative := strings.HasPrefix(text, "-")
	digits := strings.TrimPrefix(text, "-")
	isHex := strings.HasPrefix(strings.ToLower(digits), "0x")

	if !isHex && strings.ContainsAny(digits, ".eE") {
		body := strings.TrimRight(digits, "fFlL")
		if _, err := strconv.ParseFloat(body, 64); err != nil {
			return "", "", false
		}
		sign := ""
		if negative {
			sign = "-"
		}
		if strings.HasSuffix(strings.ToLower(digits), "f") {
			return "float", sign + body + "f", true
		}
		return "double", sign + body, true
	}

	body := strings.TrimRight(digits, "uUlL")
	suffix := strings.ToLower(digits[len(body):])
	unsigned := strings.Contains(suffix, "u")
	long := strings.Contains(suffix, "l")

	value, err := strconv.ParseUint(body, 0, 64)
	if err != nil {
		return "", "", false
	}
	if isHex {
		body = "0x" + strings.ToUpper(body[2:])
	} else {
		body = strconv.FormatUint(value, 10)
	}

	if negative {
		if unsigned || value > uint64(math.MaxInt64)+1 {
			return "", "", false
		}
		if !long && value <= uint64(math.MaxInt32)+1 {
			return "int", "-" + body, true
		}
		return "long", "-" + body + "L", true
	}
	switch {
	case unsigned && !long && value <= math.MaxUint32:
		return "uint", body + "U", true
	case unsigned:
		return "ulong", body + "UL", true
	case !long && value <= math.MaxInt32:
		return "int", body, true
	case !long && isHex && value <= math.MaxUint32:
		return "uint", body + "U", true
	case value <= math.MaxInt64:
		return "long", body + "L", true
	default:
		return "ulong", body + "UL", true
	}
}

func unparen(raw string) string {
	text := strings.TrimSpace(raw)
	for len(text) >= 2 && text[0] == '(' && text[len(text)-1] == ')' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

// ArrayLength resolves the SizeConst of an array field. Integer literals are
// used as written. A named length refers to the constants class member that
// was emitted for it, following constants that only alias another constant.
// Constants skipped by RenderConstants never resolve.
func ArrayLength(m *abi.Model, constNames map[string]string, length string) (string, bool) {
	if typ, literal, ok := ConstantLiteral(length); ok {
		return literal, isSizeConst(typ, literal)
	}
	values := make(map[string]string, len(m.Constants))
	for _, c := range m.Constants {
		values[c.Name] = c.Value
	}
	seen := map[string]bool{}
	name := unparen(length)
	for {
		value, ok := values[name]
		if !ok || seen[name] {
			return "", false
		}
		seen[name] = true
		if typ, literal, ok := ConstantLiteral(value); ok {
			return m.ConstantsClass + "." + constNames[name], isSizeConst(typ, literal)
		}
		name = unparen(value)
	}
}

func isSizeConst(typ, literal string) bool {
	return typ == "int" && !strings.HasPrefix(literal, "-")
}

// CheckArrayLengths reports the first array field whose length ArrayLength
// cannot resolve.
func CheckArrayLengths(m *abi.Model, constNames map[string]string) error {
	for _, s := range m.Structs {
		for _, f := range s.Fields {
			arr, ok := ctype.ParseArrayField(f.Declaration)
			if !ok || arr.Name != f.Name {
				continue
			}
			if override := m.StructFieldOverrides[s.Name+"."+f.Name]; override != "" {
				continue
			}
			if _, ok := ArrayLength(m, constNames, arr.Length); !ok {
				return errors.WithHint(
					errors.Consistency(fmt.Sprintf("%s.header_types.structs.%s", abi.RootPath, s.Name),
						"array field %s has length %s, which is not a non-negative int literal or a literal constant",
						f.Name, arr.Length),
					"give the length a literal value or add a struct_field_overrides entry for the field")
			}
		}
	}
	return nil
}

// RenderStructs renders structs with their field marshaling.
func RenderStructs(m *abi.Model, structs []abi.Struct, delegates abi.DelegateSet, constNames map[string]string) []string {
	var c code
	for _, s := range structs {
		c.line(structLayout(m, s.Name))
		c.open("internal struct " + naming.TypeName(s.Name, true))
		for _, f := range s.Fields {
			for _, line := range renderField(m, s.Name, f, delegates, constNames) {
				c.line(line)
			}
			c.blank()
		}
		c.close()
		c.blank()
	}
	return c.lines
}

func structLayout(m *abi.Model, name string) string {
	layout, ok := m.StructLayoutOverrides[name]
	if !ok {
		return "[StructLayout(LayoutKind.Sequential)]"
	}
	kind := layout.Kind
	if kind == "" {
		kind = "Sequential"
	}
	if layout.Pack > 0 {
		return fmt.Sprintf("[StructLayout(LayoutKind.%s, Pack = %d)]", kind, layout.Pack)
	}
	return fmt.Sprintf("[StructLayout(LayoutKind.%s)]", kind)
}

func renderField(m *abi.Model, structName string, f abi.Field, delegates abi.DelegateSet, constNames map[string]string) []string {
	name := Ident(f.Name)

	if delegate, ok := delegates.Binding(structName, f.Name); ok {
		return []string{fmt.Sprintf("public %s? %s;", delegate, name)}
	}
	if override, ok := m.StructFieldOverrides[structName+"."+f.Name]; ok && override != "" {
		return []string{fmt.Sprintf("public %s %s;", override, name)}
	}
	if arr, ok := ctype.ParseArrayField(f.Declaration); ok && arr.Name == f.Name {
		length, ok := ArrayLength(m, constNames, arr.Length)
		if !ok {
			length = arr.Length
		}
		return []string{
			fmt.Sprintf("[MarshalAs(UnmanagedType.ByValArray, SizeConst = %s)]", length),
			fmt.Sprintf("public %s[] %s;", m.MapType(arr.Elem).Value(), name),
		}
	}

	native := ctype.FieldType(f.Declaration, f.Name)
	if abi.IsBool(native) {
		return []string{"[MarshalAs(UnmanagedType.I1)]", "public bool " + name + ";"}
	}
	typ := m.MapType(native).Value()
	if m.IsCallbackType(native) {
		typ += "?"
	}
	return []string{fmt.Sprintf("public %s %s;", typ, name)}
}

// RenderDelegates renders every callback delegate, sorted by name.
func RenderDelegates(m *abi.Model, delegates abi.DelegateSet) []string {
	var c code
	for _, d := range delegates.Sorted() {
		c.line("[UnmanagedFunctionPointer(CallingConvention.Cdecl)]")
		c.line(fmt.Sprintf("internal delegate %s %s(%s);",
			m.MapType(d.Signature.Return).Value(), d.Name, delegateParams(m, d.Signature.Params)))
		c.blank()
	}
	return c.lines
}

func delegateParams(m *abi.Model, params []ctype.Param) string {
	parts := make([]string, 0, len(params))
	for i, p := range params {
		name := p.Name
		if name == "" || name == "..." {
			name = fmt.Sprintf("arg%d", i)
		}
		typ := abi.OpaquePointer
		if !p.Variadic {
			typ = m.MapType(p.Type).Value()
		}
		parts = append(parts, typ+" "+Ident(name))
	}
	return strings.Join(parts, ", ")
}
