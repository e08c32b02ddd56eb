package abi

import (
	"strings"

	"github.com/teranos/interopgen/ctype"
	"github.com/teranos/interopgen/naming"
)

// OpaquePointer is the C# spelling for anything passed as a raw address.
const OpaquePointer = "IntPtr"

var primitives = map[string]string{
	"void":               "void",
	"bool":               "bool",
	"_Bool":              "bool",
	"char":               "byte",
	"signed char":        "sbyte",
	"unsigned char":      "byte",
	"short":              "short",
	"unsigned short":     "ushort",
	"int":                "int",
	"unsigned int":       "uint",
	"unsigned":           "uint",
	"long":               "nint",
	"unsigned long":      "nuint",
	"long long":          "long",
	"unsigned long long": "ulong",
	"int8_t":             "sbyte",
	"uint8_t":            "byte",
	"int16_t":            "short",
	"uint16_t":           "ushort",
	"int32_t":            "int",
	"uint32_t":           "uint",
	"int64_t":            "long",
	"uint64_t":           "ulong",
	"intptr_t":           "nint",
	"uintptr_t":          "nuint",
	"size_t":             "nuint",
	"ssize_t":            "nint",
	"float":              "float",
	"double":             "double",
}

// HostType is the C# rendering of a native type.
type HostType struct {
	Name  string
	ByRef bool
}

// Param renders the type in parameter position ("ref T" for by-reference).
func (h HostType) Param() string {
	if h.ByRef {
		return "ref " + h.Name
	}
	return h.Name
}

// Value renders the type where a reference cannot be held: struct fields,
// delegate parameters and return values.
func (h HostType) Value() string {
	if h.ByRef {
		return OpaquePointer
	}
	return h.Name
}

// IsOpaque reports a raw pointer mapping.
func (h HostType) IsOpaque() bool {
	return !h.ByRef && h.Name == OpaquePointer
}

// MapType maps a native type spelling to its C# type. It never fails;
// anything unrecognized is an opaque pointer.
func (m *Model) MapType(native string) HostType {
	if strings.TrimSpace(native) == "..." {
		return HostType{Name: OpaquePointer}
	}
	t := ctype.Parse(native)
	switch {
	case t.Depth > 1:
		return HostType{Name: OpaquePointer}
	case t.Depth == 1:
		if m.HasStruct(t.Base) {
			return HostType{Name: naming.TypeName(t.Base, true), ByRef: true}
		}
		return HostType{Name: OpaquePointer}
	}
	return HostType{Name: m.mapBase(t.Base)}
}

func (m *Model) mapBase(base string) string {
	if host, ok := primitives[base]; ok {
		return host
	}
	if m.HasEnum(base) || m.HasStruct(base) {
		return naming.TypeName(base, true)
	}
	if m.isCallbackType(base) {
		return naming.TypeName(base, false)
	}
	return OpaquePointer
}

func (m *Model) isCallbackType(base string) bool {
	if m.HasCallback(base) {
		return true
	}
	suffix := m.CallbackTypeSuffix
	return suffix != "" && strings.HasSuffix(base, suffix) && !strings.ContainsAny(base, " ()")
}

// IsCallbackType reports whether a native type spelling names a callback
// type by value.
func (m *Model) IsCallbackType(native string) bool {
	t := ctype.Parse(native)
	return t.Depth == 0 && m.isCallbackType(t.Base)
}

// IsBool reports a by-value C bool.
func IsBool(native string) bool {
	t := ctype.Parse(native)
	return t.Depth == 0 && (t.Base == "bool" || t.Base == "_Bool")
}
