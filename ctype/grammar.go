package ctype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Param is one parsed parameter of a function or function-pointer type.
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

// Signature is a parsed function-pointer declaration.
type Signature struct {
	Name   string
	Return string
	Params []Param
}

// Key is the structural signature "ret|p1,p2" with normalized types.
// Parameter names do not take part.
func (s Signature) Key() string {
	types := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		if p.Variadic {
			types = append(types, "...")
			continue
		}
		types = append(types, Normalize(p.Type))
	}
	return Normalize(s.Return) + "|" + strings.Join(types, ",")
}

var (
	pointerBeforeName = regexp.MustCompile(`\*([A-Za-z_])`)
	fnPointerName     = regexp.MustCompile(`\(\s*\*\s*([A-Za-z_]\w*)\s*\)`)
	arrayParam        = regexp.MustCompile(`^(.*?)\s*([A-Za-z_]\w*)\s*\[[^\]]*\]$`)
	namedParam        = regexp.MustCompile(`^(.*\S)\s+([A-Za-z_]\w*)$`)

	typedefDecl = regexp.MustCompile(
		`^typedef\s+(.+?)\s*\(\s*(?:([A-Za-z_]\w*)\s*)?\*\s*(?:([A-Za-z_]\w*)\s+)?([A-Za-z_]\w*)\s*\)\s*\((.*)\)\s*;?$`)
	fieldPointerDecl = regexp.MustCompile(
		`^(.+?)\s*\(\s*(?:([A-Za-z_]\w*)\s*)?\*\s*(?:([A-Za-z_]\w*)\s+)?([A-Za-z_]\w*)\s*\)\s*\((.*)\)\s*;?$`)
	arrayFieldDecl = regexp.MustCompile(`^(.+?)\s*([A-Za-z_]\w*)\s*\[\s*([^\]]+?)\s*\]\s*;?$`)
)

// Words that complete a type spelling rather than name a parameter, so
// "unsigned int" is an unnamed parameter and not "unsigned" named "int".
var typeWords = map[string]bool{
	"void": true, "bool": true, "char": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "signed": true, "unsigned": true,
	"const": true, "volatile": true, "restrict": true,
}

// ParseParams parses a C parameter list. "void" and "" yield no params;
// unnamed parameters are named arg0, arg1, ... by position.
func ParseParams(text string) []Param {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "void" {
		return nil
	}
	var params []Param
	for idx, raw := range SplitTopLevel(trimmed) {
		params = append(params, parseParam(raw, idx))
	}
	return params
}

func parseParam(raw string, idx int) Param {
	part := strings.Join(strings.Fields(raw), " ")
	if part == "..." {
		return Param{Name: "...", Type: "...", Variadic: true}
	}
	if m := fnPointerName.FindStringSubmatchIndex(part); m != nil {
		name := part[m[2]:m[3]]
		typ := part[:m[2]] + part[m[3]:]
		return Param{Name: name, Type: strings.TrimSpace(typ)}
	}
	part = pointerBeforeName.ReplaceAllString(part, "* $1")
	if m := arrayParam.FindStringSubmatch(part); m != nil && strings.TrimSpace(m[1]) != "" {
		return Param{Name: m[2], Type: Normalize(m[1] + "*")}
	}
	if m := namedParam.FindStringSubmatch(part); m != nil && !typeWords[m[2]] {
		return Param{Name: m[2], Type: Normalize(m[1])}
	}
	return Param{Name: fmt.Sprintf("arg%d", idx), Type: Normalize(part)}
}

// ParseTypedef parses "typedef <ret> (<tok>? *<tok>? <name>)(<params>)".
// A calling-convention token is accepted only if listed in callTokens;
// ok is false for declarations outside the grammar or with another token.
func ParseTypedef(decl string, callTokens []string) (Signature, bool) {
	m := typedefDecl.FindStringSubmatch(strings.Join(strings.Fields(decl), " "))
	if m == nil {
		return Signature{}, false
	}
	return buildSignature(m, callTokens)
}

// ParseFunctionPointerField parses a struct field "<ret> (*<name>)(<params>)".
// The field's name must match when expectedName is non-empty.
func ParseFunctionPointerField(decl, expectedName string, callTokens []string) (Signature, bool) {
	m := fieldPointerDecl.FindStringSubmatch(strings.Join(strings.Fields(decl), " "))
	if m == nil {
		return Signature{}, false
	}
	if expectedName != "" && m[4] != expectedName {
		return Signature{}, false
	}
	return buildSignature(m, callTokens)
}

func buildSignature(m []string, callTokens []string) (Signature, bool) {
	for _, tok := range []string{m[2], m[3]} {
		if tok != "" && !containsToken(callTokens, tok) {
			return Signature{}, false
		}
	}
	return Signature{
		Name:   m[4],
		Return: Normalize(m[1]),
		Params: ParseParams(m[5]),
	}, true
}

func containsToken(tokens []string, tok string) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}

// ArrayField is a fixed-size inline array "type name[N]".
type ArrayField struct {
	Elem   string
	Name   string
	Length string
}

// ParseArrayField matches "type name[N]". Length is kept as written when it
// is a symbolic constant; numeric lengths are normalized to decimal.
func ParseArrayField(decl string) (ArrayField, bool) {
	m := arrayFieldDecl.FindStringSubmatch(strings.Join(strings.Fields(decl), " "))
	if m == nil {
		return ArrayField{}, false
	}
	length := m[3]
	if n, err := strconv.ParseInt(strings.TrimRight(length, "uUlL"), 0, 64); err == nil {
		length = strconv.FormatInt(n, 10)
	}
	return ArrayField{Elem: Normalize(m[1]), Name: m[2], Length: length}, true
}

// FieldType returns the type part of a field declaration "type name".
// Declarations without a trailing name are returned normalized as-is.
func FieldType(decl, name string) string {
	text := strings.TrimSuffix(strings.TrimSpace(decl), ";")
	text = strings.Join(strings.Fields(text), " ")
	if name != "" && strings.HasSuffix(text, name) {
		head := text[:len(text)-len(name)]
		if head != "" && (strings.HasSuffix(head, " ") || strings.HasSuffix(head, "*")) {
			return Normalize(head)
		}
	}
	return Normalize(text)
}
