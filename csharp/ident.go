package csharp

import "strings"

var keywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true, "default": true,
	"delegate": true, "do": true, "double": true, "else": true, "enum": true,
	"event": true, "explicit": true, "extern": true, "false": true, "finally": true,
	"fixed": true, "float": true, "for": true, "foreach": true, "goto": true,
	"if": true, "implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true, "namespace": true,
	"new": true, "null": true, "object": true, "operator": true, "out": true,
	"override": true, "params": true, "private": true, "protected": true, "public": true,
	"readonly": true, "ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true, "string": true,
	"struct": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "uint": true, "ulong": true, "unchecked": true,
	"unsafe": true, "ushort": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}

// Ident escapes C# reserved words with '@'.
func Ident(name string) string {
	if keywords[name] {
		return "@" + name
	}
	return name
}

// simpleTypeName drops nullability, by-ref modifiers and namespace
// qualification: "ref global::A.B.Foo?" -> "Foo".
func simpleTypeName(typ string) string {
	t := strings.TrimSpace(typ)
	for _, mod := range []string{"ref ", "out ", "in ", "scoped "} {
		t = strings.TrimPrefix(t, mod)
	}
	t = strings.TrimSpace(strings.TrimSuffix(t, "?"))
	t = strings.TrimPrefix(t, "global::")
	if idx := strings.LastIndexByte(t, '.'); idx >= 0 {
		t = t[idx+1:]
	}
	return t
}

// unqualifiedTypeName is simpleTypeName that keeps namespace qualification.
func unqualifiedTypeName(typ string) string {
	t := strings.TrimSpace(typ)
	for _, mod := range []string{"ref ", "out ", "in ", "scoped "} {
		t = strings.TrimPrefix(t, mod)
	}
	t = strings.TrimSpace(strings.TrimSuffix(t, "?"))
	return strings.TrimPrefix(t, "global::")
}
