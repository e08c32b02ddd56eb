// Package handles parses the handle description: which native handle type
// each managed SafeHandle wrapper owns and which function releases it.
package handles

import (
	"strings"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/internal/doc"
)

// RootPath prefixes every error location inside a handle description.
const RootPath = "handles"

// DefaultAccess is used when a handle omits its access modifier.
const DefaultAccess = "internal"

var accessModifiers = map[string]bool{
	"public":             true,
	"internal":           true,
	"private":            true,
	"protected":          true,
	"protected internal": true,
	"private protected":  true,
}

// Handle binds one native handle type to a managed wrapper class.
type Handle struct {
	Namespace string
	CsType    string
	Release   string
	Access    string
	// CHandleType is the declared native handle type, empty when the
	// description leaves it to the release function.
	CHandleType string
	// Fallback asks for a complete wrapper class instead of a partial one.
	Fallback bool
	// Path locates the entry in the description.
	Path string
}

// QualifiedName is Namespace.CsType, or CsType without a namespace.
func (h Handle) QualifiedName() string {
	if h.Namespace == "" {
		return h.CsType
	}
	return h.Namespace + "." + h.CsType
}

// ParseJSON decodes and parses a handle description.
func ParseJSON(data []byte) ([]Handle, error) {
	root, err := doc.DecodeJSON(data, RootPath)
	if err != nil {
		return nil, err
	}
	return Parse(root)
}

// Parse reads {handles: [...]} in declaration order.
func Parse(root doc.Node) ([]Handle, error) {
	if _, err := root.Object(); err != nil {
		return nil, err
	}
	list := root.Key("handles")
	if list.IsNull() {
		return nil, errors.Structural(list.Path, "required array is missing")
	}
	items, err := list.Array()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(items))
	out := make([]Handle, 0, len(items))
	for _, item := range items {
		h, err := parseHandle(item)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[h.QualifiedName()]; dup {
			return nil, errors.Uniqueness(item.Path, "wrapper type %s is already declared at %s", h.QualifiedName(), first)
		}
		seen[h.QualifiedName()] = item.Path
		out = append(out, h)
	}
	return out, nil
}

func parseHandle(item doc.Node) (Handle, error) {
	if _, err := item.Object(); err != nil {
		return Handle{}, err
	}
	h := Handle{Path: item.Path}

	required := []struct {
		key string
		dst *string
	}{
		{"cs_type", &h.CsType},
		{"release", &h.Release},
	}
	for _, r := range required {
		value, err := item.Key(r.key).String()
		if err != nil {
			return Handle{}, err
		}
		if *r.dst = strings.TrimSpace(value); *r.dst == "" {
			return Handle{}, errors.Structural(item.Key(r.key).Path, "%s must not be empty", r.key)
		}
	}

	var err error
	if h.Namespace, err = item.Key("namespace").OptString(""); err != nil {
		return Handle{}, err
	}
	if h.Access, err = item.Key("access").OptString(DefaultAccess); err != nil {
		return Handle{}, err
	}
	h.Access = strings.Join(strings.Fields(h.Access), " ")
	if !accessModifiers[h.Access] {
		return Handle{}, errors.Structural(item.Key("access").Path, "unsupported access modifier %q", h.Access)
	}
	if h.CHandleType, err = item.Key("c_handle_type").OptString(""); err != nil {
		return Handle{}, err
	}
	h.CHandleType = strings.TrimSpace(h.CHandleType)
	if h.Fallback, err = item.Key("fallback").OptBool(false); err != nil {
		return Handle{}, err
	}
	h.Namespace = strings.TrimSpace(h.Namespace)
	return h, nil
}
