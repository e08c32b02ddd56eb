package csharp

import (
	"fmt"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/ctype"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/handles"
)

// HandleSectionSuffix names the disposal section of a wrapper.
const HandleSectionSuffix = ".Handle"

// BoundHandle is a handle checked against the function registry.
type BoundHandle struct {
	handles.Handle
	// Namespace is the effective namespace of the wrapper class.
	Namespace string
	// Native is the handle's native type, declared or taken from the
	// release function.
	Native ctype.Type
}

// BindHandles checks every handle against the registry: the release
// function must exist and its first parameter must be the declared native
// handle type. Handles without a namespace use defaultNamespace.
func BindHandles(m *abi.Model, hs []handles.Handle, defaultNamespace string) ([]BoundHandle, error) {
	out := make([]BoundHandle, 0, len(hs))
	for _, h := range hs {
		fn, ok := m.Function(h.Release)
		if !ok {
			return nil, errors.WithHint(
				errors.Reference(h.Path+".release", "release function %s is not declared", h.Release),
				"the release function must appear in the ABI description's functions array")
		}
		first, ok := fn.FirstParamType()
		if !ok {
			return nil, errors.Consistency(h.Path+".release",
				"release function %s takes no handle parameter", h.Release)
		}
		native := ctype.Parse(first)
		if h.CHandleType != "" {
			declared := ctype.Parse(h.CHandleType)
			if declared != native {
				return nil, errors.Consistency(h.Path+".c_handle_type",
					"handle type %s does not match %s first parameter type %s",
					declared, h.Release, native)
			}
		}
		ns := h.Namespace
		if ns == "" {
			ns = defaultNamespace
		}
		out = append(out, BoundHandle{Handle: h, Namespace: ns, Native: native})
	}
	return out, nil
}

// HandleSection renders the disposal code of one wrapper.
func HandleSection(m *abi.Model, h BoundHandle) Section {
	var c code
	call := fmt.Sprintf("%s.%s(handle);", m.NativeClass, h.Release)

	if h.Fallback {
		c.open(fmt.Sprintf("%s sealed partial class %s : SafeHandle", h.Access, h.CsType))
		c.line(fmt.Sprintf("public %s()", h.CsType))
		c.line("    : base(IntPtr.Zero, ownsHandle: true)")
		c.line("{")
		c.line("}")
		c.blank()
		c.line(fmt.Sprintf("internal %s(IntPtr handle, bool ownsHandle = true)", h.CsType))
		c.line("    : base(IntPtr.Zero, ownsHandle)")
		c.line("{")
		c.indent++
		c.line("SetHandle(handle);")
		c.close()
		c.blank()
		c.line("public override bool IsInvalid => handle == IntPtr.Zero;")
		c.blank()
	} else {
		c.open(fmt.Sprintf("%s partial class %s", h.Access, h.CsType))
	}

	c.open("protected override bool ReleaseHandle()")
	c.line(call)
	c.line("return true;")
	c.close()
	c.close()

	return Section{
		Name:      h.CsType + HandleSectionSuffix,
		Class:     h.CsType,
		Namespace: h.Namespace,
		Usings:    usingsWith(InteropUsings, m.Namespace, h.Namespace),
		Lines:     c.lines,
		Origin:    h.Path,
	}
}

// usingsWith appends the interop namespace when code in ns refers to it.
func usingsWith(base []string, interopNamespace, ns string) []string {
	out := append([]string(nil), base...)
	if interopNamespace != "" && interopNamespace != ns {
		out = append(out, interopNamespace)
	}
	return out
}
