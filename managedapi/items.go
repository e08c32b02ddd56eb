package managedapi

import (
	"strings"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/internal/doc"
)

// ItemKind discriminates MethodItem.
type ItemKind int

const (
	// ItemVerbatim is a single line copied through.
	ItemVerbatim ItemKind = iota
	// ItemMethod is a signature line followed by a braced body.
	ItemMethod
	// ItemBlock is a raw block of lines.
	ItemBlock
)

func (k ItemKind) String() string {
	switch k {
	case ItemVerbatim:
		return "verbatim"
	case ItemMethod:
		return "method"
	case ItemBlock:
		return "block"
	}
	return "unknown"
}

// MethodItem is one class member as authored.
type MethodItem struct {
	Kind      ItemKind
	Line      string
	Signature string
	Body      []string
	Lines     []string
	Path      string
}

// ParseMethodItem reads "line", {signature, body} or {lines}.
func ParseMethodItem(n doc.Node) (MethodItem, error) {
	if s, ok := n.Value.(string); ok {
		return MethodItem{Kind: ItemVerbatim, Line: strings.TrimRight(s, " \t"), Path: n.Path}, nil
	}
	if _, err := n.Object(); err != nil {
		return MethodItem{}, err
	}

	if sig := n.Key("signature"); !sig.IsNull() {
		signature, err := sig.String()
		if err != nil {
			return MethodItem{}, err
		}
		if strings.TrimSpace(signature) == "" {
			return MethodItem{}, errors.Structural(sig.Path, "signature must not be empty")
		}
		body, err := TextLines(n.Key("body"))
		if err != nil {
			return MethodItem{}, err
		}
		return MethodItem{
			Kind:      ItemMethod,
			Signature: strings.TrimSpace(signature),
			Body:      Reindent(body),
			Path:      n.Path,
		}, nil
	}

	if lines := n.Key("lines"); !lines.IsNull() {
		text, err := TextLines(lines)
		if err != nil {
			return MethodItem{}, err
		}
		return MethodItem{Kind: ItemBlock, Lines: Reindent(text), Path: n.Path}, nil
	}

	return MethodItem{}, errors.Structural(n.Path, "method item needs a signature or lines")
}

// ParseMethodItems reads an optional array of method items.
func ParseMethodItems(n doc.Node) ([]MethodItem, error) {
	nodes, err := n.OptArray()
	if err != nil {
		return nil, err
	}
	items := make([]MethodItem, 0, len(nodes))
	for _, node := range nodes {
		item, err := ParseMethodItem(node)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// TextLines accepts a string (split on newlines) or an array of strings.
// Null yields nothing.
func TextLines(n doc.Node) ([]string, error) {
	if n.IsNull() {
		return nil, nil
	}
	if s, ok := n.Value.(string); ok {
		return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n"), nil
	}
	items, err := n.StringList()
	if err != nil {
		return nil, errors.Structural(n.Path, "expected a string or an array of strings")
	}
	var lines []string
	for _, item := range items {
		lines = append(lines, strings.Split(strings.ReplaceAll(item, "\r\n", "\n"), "\n")...)
	}
	return lines, nil
}

// Reindent removes the smallest leading-space count shared by non-blank
// lines, keeping relative indentation. Tabs count as four spaces; trailing
// whitespace and leading/trailing blank lines are dropped.
func Reindent(lines []string) []string {
	expanded := make([]string, len(lines))
	for i, line := range lines {
		expanded[i] = strings.TrimRight(strings.ReplaceAll(line, "\t", "    "), " ")
	}

	for len(expanded) > 0 && expanded[0] == "" {
		expanded = expanded[1:]
	}
	for len(expanded) > 0 && expanded[len(expanded)-1] == "" {
		expanded = expanded[:len(expanded)-1]
	}

	common := -1
	for _, line := range expanded {
		if line == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if common < 0 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return expanded
	}

	out := make([]string, len(expanded))
	for i, line := range expanded {
		if line == "" {
			continue
		}
		out[i] = line[common:]
	}
	return out
}
