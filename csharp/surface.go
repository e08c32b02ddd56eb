package csharp

import (
	"fmt"
	"strings"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/ctype"
	"github.com/teranos/interopgen/managedapi"
	"github.com/teranos/interopgen/naming"
)

// ownerParam is the name of the wrapper argument of every surface method.
const ownerParam = "owner"

// safeHandleMembers are inherited names a generated method must not hide.
var safeHandleMembers = []string{
	"Close", "DangerousAddRef", "DangerousGetHandle", "DangerousRelease", "Dispose",
	"Equals", "GetHashCode", "GetType", "IsClosed", "IsInvalid", "ReleaseHandle",
	"SetHandle", "SetHandleAsInvalid", "ToString",
}

// SurfaceParam is one forwarded parameter after the owner.
type SurfaceParam struct {
	Name string
	// Type is the C# parameter type as declared ("ref T" for by-reference).
	Type string
	// Arg is the expression passed to the native entry point.
	Arg string
	// Wrapper is set when the parameter is another handle's wrapper.
	Wrapper bool
}

// SurfaceMethod forwards one native function through a wrapper.
type SurfaceMethod struct {
	Name     string
	Function string
	Return   string
	Params   []SurfaceParam
}

// Surface is the generated method set of one handle.
type Surface struct {
	Handle  BoundHandle
	Methods []SurfaceMethod
}

// ModuleStem strips the module prefix and the "_t" suffix from a handle's
// native type: "lrtc_rtp_sender_t" -> "rtp_sender".
func ModuleStem(modulePrefix, nativeBase string) string {
	return naming.StripPrefix(strings.TrimSuffix(nativeBase, "_t"), modulePrefix)
}

// SurfaceMethodName derives the method name of a function on a handle:
// "lrtc_rtp_sender_set_x" -> "SetX" for stem "rtp_sender".
func SurfaceMethodName(modulePrefix, stem, function string) string {
	var rest string
	if full := modulePrefix + stem + "_"; strings.HasPrefix(function, full) && len(function) > len(full) {
		rest = function[len(full):]
	} else {
		rest = naming.StripPrefix(function, modulePrefix)
	}
	return naming.PascalCase(rest)
}

// BuildSurface matches registry functions to handles by the exact native
// type of their first parameter and derives one forwarding method per match.
func BuildSurface(m *abi.Model, hs []BoundHandle, opts managedapi.AutoSurface) []Surface {
	wrappers := make(map[ctype.Type]BoundHandle, len(hs))
	for _, h := range hs {
		if _, taken := wrappers[h.Native]; !taken {
			wrappers[h.Native] = h
		}
	}

	out := make([]Surface, 0, len(hs))
	for _, h := range hs {
		stem := ModuleStem(m.ModulePrefix, h.Native.Base)
		used := naming.NewNameSet(safeHandleMembers...)
		s := Surface{Handle: h}

		for _, fn := range m.Functions {
			if fn.Name == h.Release || fn.Variadic || (fn.Deprecated && !opts.IncludeDeprecated) {
				continue
			}
			first, ok := fn.FirstParamType()
			if !ok || ctype.Parse(first) != h.Native {
				continue
			}

			name := used.Claim(opts.MethodPrefix + SurfaceMethodName(m.ModulePrefix, stem, fn.Name))
			method := SurfaceMethod{
				Name:     name,
				Function: fn.Name,
				Return:   m.MapType(fn.Return).Value(),
			}

			paramNames := naming.NewNameSet(ownerParam)
			for i, p := range fn.Params[1:] {
				pname := p.Name
				if pname == "" {
					pname = fmt.Sprintf("arg%d", i+1)
				}
				pname = Ident(paramNames.Claim(pname))

				if other, ok := wrappers[ctype.Parse(p.Type)]; ok {
					method.Params = append(method.Params, SurfaceParam{
						Name:    pname,
						Type:    other.CsType,
						Arg:     pname + ".DangerousGetHandle()",
						Wrapper: true,
					})
					continue
				}
				host := m.MapType(p.Type)
				arg := pname
				if host.ByRef {
					arg = "ref " + pname
				}
				method.Params = append(method.Params, SurfaceParam{Name: pname, Type: host.Param(), Arg: arg})
			}
			s.Methods = append(s.Methods, method)
		}
		out = append(out, s)
	}
	return out
}

// SurfaceSection renders a handle's forwarding methods into its partial
// wrapper class. ok is false when the handle matched no function.
func SurfaceSection(m *abi.Model, s Surface, opts managedapi.AutoSurface) (Section, bool) {
	if len(s.Methods) == 0 {
		return Section{}, false
	}
	h := s.Handle
	var c code
	c.open(fmt.Sprintf("%s partial class %s", h.Access, h.CsType))
	for _, method := range s.Methods {
		params := []string{h.CsType + " " + ownerParam}
		args := []string{ownerParam + ".DangerousGetHandle()"}
		for _, p := range method.Params {
			params = append(params, p.Type+" "+p.Name)
			args = append(args, p.Arg)
		}

		c.open(fmt.Sprintf("internal static %s %s(%s)", method.Return, method.Name, strings.Join(params, ", ")))
		c.line(fmt.Sprintf("ArgumentNullException.ThrowIfNull(%s);", ownerParam))
		for _, p := range method.Params {
			if p.Wrapper {
				c.line(fmt.Sprintf("ArgumentNullException.ThrowIfNull(%s);", p.Name))
			}
		}
		call := fmt.Sprintf("%s.%s(%s);", m.NativeClass, method.Function, strings.Join(args, ", "))
		if method.Return == "void" {
			c.line(call)
		} else {
			c.line("return " + call)
		}
		c.close()
		c.blank()
	}
	c.close()

	return Section{
		Name:      h.CsType + opts.SectionSuffix,
		Class:     h.CsType,
		Namespace: h.Namespace,
		Usings:    usingsWith(InteropUsings, m.Namespace, h.Namespace),
		Lines:     c.lines,
		Origin:    h.Path,
	}, true
}
