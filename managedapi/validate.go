package managedapi

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/internal/doc"
)

// Validate checks every reference into the ABI model: required native
// functions, callback native structs and their fields.
func (m *Model) Validate(model *abi.Model) error {
	var unknown []string
	for _, name := range m.RequiredNativeFunctions {
		if !model.HasFunction(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return errors.WithHint(
			errors.Reference(RootPath+".required_native_functions",
				"unknown native function(s): %s", strings.Join(unknown, ", ")),
			"every required function must be declared in the ABI description's functions array")
	}

	for i, cb := range m.Callbacks {
		s, ok := model.Struct(cb.NativeStruct)
		if !ok {
			return errors.Reference(fmt.Sprintf("%s.callbacks[%d].native_struct", RootPath, i),
				"native struct %s is not declared", cb.NativeStruct)
		}
		for j, f := range cb.Fields {
			if _, ok := s.Field(f.NativeField); !ok {
				return errors.Reference(fmt.Sprintf("%s.callbacks[%d].fields[%d]", RootPath, i, j),
					"native field %q not found in struct %s", f.NativeField, cb.NativeStruct)
			}
		}
	}
	return nil
}

// NativeCallPatterns builds the default reference patterns for a native
// class name: NativeMethods.<name>.
func NativeCallPatterns(nativeClass string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`\b` + regexp.QuoteMeta(nativeClass) + `\.([A-Za-z_][A-Za-z0-9_]*)\b`),
	}
}

// CompilePatterns compiles user-supplied reference patterns. Each pattern
// must capture the function name in its first group.
func CompilePatterns(sources []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid required-function pattern %q", src)
		}
		if re.NumSubexp() < 1 {
			return nil, errors.Newf("required-function pattern %q has no capture group", src)
		}
		out = append(out, re)
	}
	return out, nil
}

// DeriveRequiredFunctions scans every string of the managed-API document for
// native calls and returns the referenced registry functions, sorted.
func DeriveRequiredFunctions(root doc.Node, model *abi.Model, patterns []*regexp.Regexp) []string {
	found := map[string]bool{}
	for _, text := range root.Strings() {
		for _, re := range patterns {
			for _, match := range re.FindAllStringSubmatch(text, -1) {
				if model.HasFunction(match[1]) {
					found[match[1]] = true
				}
			}
		}
	}
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MissingRequired returns derived names absent from the declared list.
func (m *Model) MissingRequired(derived []string) []string {
	declared := make(map[string]bool, len(m.RequiredNativeFunctions))
	for _, name := range m.RequiredNativeFunctions {
		declared[name] = true
	}
	var missing []string
	for _, name := range derived {
		if !declared[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
