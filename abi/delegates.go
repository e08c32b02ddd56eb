package abi

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/interopgen/ctype"
	"github.com/teranos/interopgen/naming"
)

// Delegate is one callback type to emit.
type Delegate struct {
	// Name is the C# delegate name.
	Name      string
	Signature ctype.Signature
	// Generated is set for delegates synthesized from struct fields.
	Generated bool
}

// DelegateSet is the result of callback synthesis.
type DelegateSet struct {
	Delegates []Delegate
	// Bindings maps "Struct.field" to the delegate the field uses.
	Bindings map[string]string
}

// Sorted returns the delegates ordered by C# name.
func (d DelegateSet) Sorted() []Delegate {
	out := append([]Delegate(nil), d.Delegates...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Binding returns the delegate bound to a callback struct field.
func (d DelegateSet) Binding(structName, fieldName string) (string, bool) {
	name, ok := d.Bindings[structName+"."+fieldName]
	return name, ok
}

// SynthesizeDelegates resolves a delegate for every function-pointer field
// of every callback struct. Fields reuse a declared typedef with the same
// structural signature; otherwise a name is generated from the field name
// and added to the table so later fields can share it.
func (m *Model) SynthesizeDelegates(log *zap.SugaredLogger) DelegateSet {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	set := DelegateSet{Bindings: map[string]string{}}
	bySignature := map[string]string{}
	byName := map[string]int{}
	used := naming.NewNameSet()

	var declared []string
	for _, cb := range m.Callbacks {
		name := naming.TypeName(cb.Name, false)
		if _, dup := byName[name]; dup {
			continue
		}
		byName[name] = len(set.Delegates)
		set.Delegates = append(set.Delegates, Delegate{Name: name, Signature: cb})
		used.Claim(name)
		declared = append(declared, name)
		// the first declared typedef wins for a shared signature
		if _, taken := bySignature[cb.Key()]; !taken {
			bySignature[cb.Key()] = name
		}
	}

	prefix := ""
	if len(declared) >= 2 {
		if p := naming.PascalPrefix(declared); len(p) >= 2 {
			prefix = p
		}
	}

	for _, s := range m.Structs {
		if !m.IsCallbackStruct(s.Name) {
			continue
		}
		for _, field := range s.Fields {
			sig, ok := ctype.ParseFunctionPointerField(field.Declaration, field.Name, m.CallTokens)
			if !ok {
				continue
			}
			key := s.Name + "." + field.Name

			if override, ok := m.callbackOverride(s.Name, field.Name); ok {
				set.Bindings[key] = override
				if _, known := byName[override]; !known {
					byName[override] = len(set.Delegates)
					set.Delegates = append(set.Delegates, Delegate{Name: override, Signature: sig, Generated: true})
					used.Claim(override)
				}
				log.Debugw("Callback field bound by override", "field", key, "delegate", override)
				continue
			}

			if name, ok := bySignature[sig.Key()]; ok {
				set.Bindings[key] = name
				log.Debugw("Callback field reuses delegate", "field", key, "delegate", name)
				continue
			}

			base := naming.PascalCase(field.Name) + "Cb"
			if prefix != "" && !strings.HasPrefix(base, prefix) {
				base = prefix + base
			}
			name := used.Claim(base)
			byName[name] = len(set.Delegates)
			bySignature[sig.Key()] = name
			set.Delegates = append(set.Delegates, Delegate{Name: name, Signature: sig, Generated: true})
			set.Bindings[key] = name
			log.Debugw("Generated delegate for callback field", "field", key, "delegate", name)
		}
	}
	return set
}

// callbackOverride looks up "Struct.field" first, then the bare field name.
func (m *Model) callbackOverride(structName, fieldName string) (string, bool) {
	if name, ok := m.CallbackFieldOverrides[structName+"."+fieldName]; ok && name != "" {
		return name, true
	}
	if name, ok := m.CallbackFieldOverrides[fieldName]; ok && name != "" {
		return name, true
	}
	return "", false
}
