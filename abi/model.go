// Package abi builds the in-memory model of a C ABI description: enums,
// structs, callback typedefs, constants, the function registry and the
// binding overrides. It also owns native-to-C# type mapping and callback
// delegate synthesis, the two lookups every renderer shares.
package abi

import (
	"sort"
	"strings"

	"github.com/teranos/interopgen/ctype"
	"github.com/teranos/interopgen/hints"
)

// Defaults applied when the description leaves a binding setting out.
const (
	DefaultNamespace          = "Interop"
	DefaultConstantsClass     = "NativeConstants"
	DefaultNativeClass        = "NativeMethods"
	DefaultCallbackTypeSuffix = "_cb"
)

// DefaultCallbackStructSuffixes recognize structs that hold callbacks.
var DefaultCallbackStructSuffixes = []string{"_callbacks_t"}

// EnumMember is one enumerator. Value holds the literal as written, empty
// when the host should auto-increment.
type EnumMember struct {
	Name     string
	Value    string
	HasValue bool
}

// Enum is a C enum and its members in declaration order.
type Enum struct {
	Name    string
	Members []EnumMember
}

// Field is a struct field and its raw C declaration.
type Field struct {
	Name        string
	Declaration string
}

// Struct is a C struct and its fields in declaration order.
type Struct struct {
	Name   string
	Fields []Field
}

// Field returns the named field.
func (s Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Constant is a preprocessor constant and its literal.
type Constant struct {
	Name  string
	Value string
}

// Function is one exported native entry point.
type Function struct {
	Name       string
	Return     string
	Params     []ctype.Param
	Deprecated bool
	Variadic   bool
}

// FirstParamType is the native type of the first parameter, if any.
func (f Function) FirstParamType() (string, bool) {
	if len(f.Params) == 0 || f.Params[0].Variadic {
		return "", false
	}
	return f.Params[0].Type, true
}

// Layout is a struct layout override.
type Layout struct {
	Kind string
	Pack int
}

// Model is the parsed ABI description.
type Model struct {
	Target string

	Enums     []Enum
	Structs   []Struct
	Callbacks []ctype.Signature
	Constants []Constant
	Functions []Function

	CallbackFieldOverrides map[string]string
	StructFieldOverrides   map[string]string
	StructLayoutOverrides  map[string]Layout

	CallbackSuffixes   []string
	CallTokens         []string
	CallbackTypeSuffix string

	Namespace      string
	ConstantsClass string
	NativeClass    string
	ModulePrefix   string

	OutputHints hints.Config

	enums     map[string]int
	structs   map[string]int
	callbacks map[string]int
	functions map[string]int
}

// NewModel returns an empty model with binding defaults applied.
func NewModel() *Model {
	m := &Model{
		CallbackFieldOverrides: map[string]string{},
		StructFieldOverrides:   map[string]string{},
		StructLayoutOverrides:  map[string]Layout{},
		CallbackSuffixes:       append([]string(nil), DefaultCallbackStructSuffixes...),
		CallbackTypeSuffix:     DefaultCallbackTypeSuffix,
		Namespace:              DefaultNamespace,
		ConstantsClass:         DefaultConstantsClass,
		NativeClass:            DefaultNativeClass,
	}
	m.reindex()
	return m
}

// reindex rebuilds the name lookups after the slices change.
func (m *Model) reindex() {
	m.enums = make(map[string]int, len(m.Enums))
	for i, e := range m.Enums {
		m.enums[e.Name] = i
	}
	m.structs = make(map[string]int, len(m.Structs))
	for i, s := range m.Structs {
		m.structs[s.Name] = i
	}
	m.callbacks = make(map[string]int, len(m.Callbacks))
	for i, c := range m.Callbacks {
		if _, dup := m.callbacks[c.Name]; !dup {
			m.callbacks[c.Name] = i
		}
	}
	m.functions = make(map[string]int, len(m.Functions))
	for i, f := range m.Functions {
		m.functions[f.Name] = i
	}
}

// HasEnum reports a known enum.
func (m *Model) HasEnum(name string) bool {
	_, ok := m.enums[name]
	return ok
}

// HasStruct reports a known struct.
func (m *Model) HasStruct(name string) bool {
	_, ok := m.structs[name]
	return ok
}

// Struct looks up a struct by C name.
func (m *Model) Struct(name string) (Struct, bool) {
	i, ok := m.structs[name]
	if !ok {
		return Struct{}, false
	}
	return m.Structs[i], true
}

// HasCallback reports a known callback typedef.
func (m *Model) HasCallback(name string) bool {
	_, ok := m.callbacks[name]
	return ok
}

// Function looks up a registry entry.
func (m *Model) Function(name string) (Function, bool) {
	i, ok := m.functions[name]
	if !ok {
		return Function{}, false
	}
	return m.Functions[i], true
}

// HasFunction reports a registry entry.
func (m *Model) HasFunction(name string) bool {
	_, ok := m.functions[name]
	return ok
}

// FunctionNames returns the registry names sorted.
func (m *Model) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for _, f := range m.Functions {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// FunctionFirstParamType returns the first parameter type of a function.
func (m *Model) FunctionFirstParamType(name string) (string, bool) {
	f, ok := m.Function(name)
	if !ok {
		return "", false
	}
	return f.FirstParamType()
}

// IsCallbackStruct reports whether a struct name carries a callback suffix.
func (m *Model) IsCallbackStruct(name string) bool {
	for _, suffix := range m.CallbackSuffixes {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
