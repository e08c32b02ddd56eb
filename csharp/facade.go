package csharp

import (
	"fmt"
	"strings"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/managedapi"
	"github.com/teranos/interopgen/naming"
)

var facadeScalars = map[string]bool{
	"void": true, "bool": true, "byte": true, "sbyte": true, "char": true,
	"short": true, "ushort": true, "int": true, "uint": true, "long": true,
	"ulong": true, "nint": true, "nuint": true, "float": true, "double": true,
	"decimal": true, "string": true,
}

var opaquePointers = map[string]bool{
	"IntPtr":  true,
	"UIntPtr": true,
}

// FacadeMethod is a public forwarder to one surface method.
type FacadeMethod struct {
	Name string
	// Access never exceeds the access of any wrapper in the signature.
	Access string
	Target SurfaceMethod
}

// Facade is the public subset of one handle's surface.
type Facade struct {
	Handle BoundHandle
	// Access is the requested facade access capped at the handle's.
	Access  string
	Methods []FacadeMethod
}

// FacadeFilter decides which surface methods are safe to expose.
type FacadeFilter struct {
	allowIntPtr bool
	// wrappers maps wrapper type names to their declared access.
	wrappers map[string]string
}

// NewFacadeFilter accepts scalars and the given handle wrappers, by simple
// or namespace-qualified name.
func NewFacadeFilter(hs []BoundHandle, allowIntPtr bool) FacadeFilter {
	f := FacadeFilter{allowIntPtr: allowIntPtr, wrappers: map[string]string{}}
	for _, h := range hs {
		f.wrappers[h.CsType] = h.Access
		f.wrappers[h.Namespace+"."+h.CsType] = h.Access
		f.wrappers[h.QualifiedName()] = h.Access
	}
	return f
}

// Allows reports whether a C# type may appear in the facade.
func (f FacadeFilter) Allows(typ string) bool {
	simple := simpleTypeName(typ)
	switch {
	case facadeScalars[simple]:
		return true
	case opaquePointers[simple]:
		return f.allowIntPtr
	}
	_, ok := f.wrapper(typ)
	return ok
}

func (f FacadeFilter) wrapper(typ string) (access string, ok bool) {
	if access, ok = f.wrappers[simpleTypeName(typ)]; ok {
		return access, true
	}
	access, ok = f.wrappers[unqualifiedTypeName(typ)]
	return access, ok
}

// MethodAccess caps access at the access of every wrapper type the method
// exposes.
func (f FacadeFilter) MethodAccess(access string, m SurfaceMethod) string {
	types := []string{m.Return}
	for _, p := range m.Params {
		types = append(types, p.Type)
	}
	for _, typ := range types {
		if wrapperAccess, ok := f.wrapper(typ); ok {
			access = CapAccess(access, wrapperAccess)
		}
	}
	return access
}

// CapAccess limits a requested top-level access to limit: anything exposing
// a non-public type is at most internal.
func CapAccess(requested, limit string) string {
	if requested == "public" && limit != "public" {
		return "internal"
	}
	return requested
}

// Keeps reports whether every type of a surface method is allowed.
func (f FacadeFilter) Keeps(m SurfaceMethod) bool {
	if !f.Allows(m.Return) {
		return false
	}
	for _, p := range m.Params {
		if !f.Allows(p.Type) {
			return false
		}
	}
	return true
}

// BuildFacade filters each surface and names the survivors: the internal
// method prefix is replaced by the facade prefix.
func BuildFacade(surfaces []Surface, hs []BoundHandle, opts managedapi.AutoSurface) []Facade {
	filter := NewFacadeFilter(hs, opts.Facade.AllowIntPtr)
	out := make([]Facade, 0, len(surfaces))
	for _, s := range surfaces {
		used := naming.NewNameSet()
		f := Facade{Handle: s.Handle, Access: CapAccess(opts.Facade.Access, s.Handle.Access)}
		for _, method := range s.Methods {
			if !filter.Keeps(method) {
				continue
			}
			base := naming.StripPrefix(method.Name, opts.MethodPrefix)
			f.Methods = append(f.Methods, FacadeMethod{
				Name:   used.Claim(opts.Facade.MethodPrefix + base),
				Access: filter.MethodAccess(f.Access, method),
				Target: method,
			})
		}
		out = append(out, f)
	}
	return out
}

// FacadeSection renders the extension class of one facade. ok is false when
// no method survived filtering.
func FacadeSection(m *abi.Model, f Facade, opts managedapi.AutoSurface) (Section, bool) {
	if len(f.Methods) == 0 {
		return Section{}, false
	}
	h := f.Handle
	class := h.CsType + opts.Facade.ClassSuffix
	access := f.Access
	if access == "" {
		access = CapAccess(opts.Facade.Access, h.Access)
	}

	var c code
	c.open(fmt.Sprintf("%s static partial class %s", access, class))
	for _, method := range f.Methods {
		params := []string{"this " + h.CsType + " " + ownerParam}
		args := []string{ownerParam}
		for _, p := range method.Target.Params {
			params = append(params, p.Type+" "+p.Name)
			args = append(args, p.Name)
		}
		methodAccess := method.Access
		if methodAccess == "" {
			methodAccess = access
		}
		c.open(fmt.Sprintf("%s static %s %s(%s)", methodAccess, method.Target.Return, method.Name, strings.Join(params, ", ")))
		call := fmt.Sprintf("%s.%s(%s);", h.CsType, method.Target.Name, strings.Join(args, ", "))
		if method.Target.Return == "void" {
			c.line(call)
		} else {
			c.line("return " + call)
		}
		c.close()
		c.blank()
	}
	c.close()

	return Section{
		Name:      h.CsType + opts.Facade.SectionSuffix,
		Class:     class,
		Namespace: h.Namespace,
		Usings:    usingsWith(InteropUsings, m.Namespace, h.Namespace),
		Lines:     c.lines,
		Origin:    h.Path,
	}, true
}
