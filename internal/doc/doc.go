// Package doc decodes input documents (JSON or YAML) into a generic tree and
// gives path-aware access to it. Every accessor reports failures as
// structural errors carrying the dotted location of the offending value, so
// callers never type-switch on raw decoded values themselves.
package doc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/interopgen/errors"
)

// Node is one value of a decoded document together with its dotted path.
type Node struct {
	Path  string
	Value any
}

// Load reads a document from disk, choosing YAML for .yaml/.yml files and
// JSON otherwise.
func Load(path, root string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Node{}, errors.Wrapf(err, "failed to read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data, root)
	default:
		return DecodeJSON(data, root)
	}
}

// DecodeJSON decodes a JSON document. Numbers are kept as json.Number so
// literal spellings survive into generated code.
func DecodeJSON(data []byte, root string) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return Node{}, errors.Structural(root, "invalid JSON: %v", err)
	}
	if dec.More() {
		return Node{}, errors.Structural(root, "invalid JSON: trailing data after document")
	}
	return Node{Path: root, Value: value}, nil
}

// DecodeYAML decodes a YAML document into the same tree shape DecodeJSON
// produces.
func DecodeYAML(data []byte, root string) (Node, error) {
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return Node{}, errors.Structural(root, "invalid YAML: %v", err)
	}
	normalized, err := fromYAML(value, root)
	if err != nil {
		return Node{}, err
	}
	return Node{Path: root, Value: normalized}, nil
}

func fromYAML(value any, path string) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := fromYAML(item, path+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			name, ok := key.(string)
			if !ok {
				return nil, errors.Structural(path, "mapping key %v is not a string", key)
			}
			converted, err := fromYAML(item, path+"."+name)
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := fromYAML(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	default:
		return v, nil
	}
}

// IsNull reports a missing key or explicit null.
func (n Node) IsNull() bool {
	return n.Value == nil
}

// Key returns the child at key. Missing keys yield a null node.
func (n Node) Key(key string) Node {
	child := Node{Path: n.Path + "." + key}
	if m, ok := n.Value.(map[string]any); ok {
		child.Value = m[key]
	}
	return child
}

// IsObject reports whether the node holds a mapping.
func (n Node) IsObject() bool {
	_, ok := n.Value.(map[string]any)
	return ok
}

// Object requires a mapping.
func (n Node) Object() (map[string]any, error) {
	m, ok := n.Value.(map[string]any)
	if !ok {
		return nil, errors.Structural(n.Path, "expected an object, got %s", kindOf(n.Value))
	}
	return m, nil
}

// OptObject is Object but accepts null.
func (n Node) OptObject() (map[string]any, error) {
	if n.IsNull() {
		return map[string]any{}, nil
	}
	return n.Object()
}

// Keys returns the mapping's keys in sorted order; null yields nothing.
func (n Node) Keys() ([]string, error) {
	m, err := n.OptObject()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Array requires a sequence and returns its elements as nodes.
func (n Node) Array() ([]Node, error) {
	items, ok := n.Value.([]any)
	if !ok {
		return nil, errors.Structural(n.Path, "expected an array, got %s", kindOf(n.Value))
	}
	out := make([]Node, len(items))
	for i, item := range items {
		out[i] = Node{Path: fmt.Sprintf("%s[%d]", n.Path, i), Value: item}
	}
	return out, nil
}

// OptArray is Array but accepts null.
func (n Node) OptArray() ([]Node, error) {
	if n.IsNull() {
		return nil, nil
	}
	return n.Array()
}

// String requires a string.
func (n Node) String() (string, error) {
	s, ok := n.Value.(string)
	if !ok {
		return "", errors.Structural(n.Path, "expected a string, got %s", kindOf(n.Value))
	}
	return s, nil
}

// OptString returns def for null.
func (n Node) OptString(def string) (string, error) {
	if n.IsNull() {
		return def, nil
	}
	return n.String()
}

// OptBool returns def for null.
func (n Node) OptBool(def bool) (bool, error) {
	if n.IsNull() {
		return def, nil
	}
	b, ok := n.Value.(bool)
	if !ok {
		return false, errors.Structural(n.Path, "expected a boolean, got %s", kindOf(n.Value))
	}
	return b, nil
}

// Int requires an integral number.
func (n Node) Int() (int, error) {
	num, ok := n.Value.(json.Number)
	if !ok {
		return 0, errors.Structural(n.Path, "expected an integer, got %s", kindOf(n.Value))
	}
	v, err := strconv.Atoi(num.String())
	if err != nil {
		return 0, errors.Structural(n.Path, "expected an integer, got %s", num)
	}
	return v, nil
}

// IsNumber reports whether the node holds a number.
func (n Node) IsNumber() bool {
	_, ok := n.Value.(json.Number)
	return ok
}

// Scalar renders a string, number or boolean as text.
func (n Node) Scalar() (string, error) {
	switch v := n.Value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", errors.Structural(n.Path, "expected a scalar, got %s", kindOf(n.Value))
	}
}

// StringList requires an array of strings; null yields nothing.
func (n Node) StringList() ([]string, error) {
	items, err := n.OptArray()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := item.String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// StringMap requires an object whose values are strings; null yields an
// empty map.
func (n Node) StringMap() (map[string]string, error) {
	keys, err := n.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		s, err := n.Key(key).String()
		if err != nil {
			return nil, err
		}
		out[key] = s
	}
	return out, nil
}

// Strings walks the tree and returns every string value in document order
// (object keys visited in sorted order).
func (n Node) Strings() []string {
	var out []string
	var walk func(any)
	walk = func(value any) {
		switch v := value.(type) {
		case string:
			out = append(out, v)
		case []any:
			for _, item := range v {
				walk(item)
			}
		case map[string]any:
			keys := make([]string, 0, len(v))
			for key := range v {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				walk(v[key])
			}
		}
	}
	walk(n.Value)
	return out
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
