package csharp

import (
	"fmt"
	"strings"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/managedapi"
	"github.com/teranos/interopgen/naming"
)

// HandleAPISectionSuffix names the section of a handle_api class.
const HandleAPISectionSuffix = ".Api"

// ManagedSections renders every managed-API directive: callback adapters,
// builder, async helper, handle API classes and custom sections, in that
// order and each in declaration order.
func ManagedSections(m *abi.Model, api *managedapi.Model, hs []BoundHandle) []Section {
	usings := usingsWith(api.Usings, m.Namespace, api.Namespace)
	newSection := func(name, class, ns, origin string, lines []string) Section {
		if ns == "" {
			ns = api.Namespace
		}
		return Section{
			Name:      name,
			Class:     class,
			Namespace: ns,
			Usings:    usingsWith(api.Usings, m.Namespace, ns),
			Lines:     lines,
			Origin:    origin,
		}
	}

	var sections []Section
	for _, cb := range api.Callbacks {
		sections = append(sections, Section{
			Name:      cb.Class,
			Class:     cb.Class,
			Namespace: api.Namespace,
			Usings:    usings,
			Lines:     RenderCallbackClass(cb),
			Origin:    cb.Path,
		})
	}
	for _, c := range []*managedapi.Class{api.Builder, api.PeerConnectionAsync} {
		if c == nil {
			continue
		}
		sections = append(sections, newSection(c.Class, c.Class, c.Namespace, c.Path, RenderClass(*c)))
	}
	for _, c := range api.HandleAPI {
		ns := c.Namespace
		if h, ok := wrapperFor(hs, c.Class, ns); ok {
			ns = h.Namespace
			c.Access = h.Access
		}
		sections = append(sections, newSection(c.Class+HandleAPISectionSuffix, c.Class, ns, c.Path, RenderClass(c)))
	}
	for _, s := range api.CustomSections {
		c := s.Class
		ns := c.Namespace
		if ns == "" {
			ns = api.Namespace
		}
		if h, ok := wrapperFor(hs, c.Class, ns); ok {
			c.Access = h.Access
		}
		sections = append(sections, newSection(s.Section, c.Class, c.Namespace, s.Path, RenderClass(c)))
	}
	return sections
}

// wrapperFor finds the bound handle whose wrapper class a managed class
// extends. An empty namespace matches any handle of that name. Partial
// declarations of one class must agree on access, so callers adopt the
// handle's.
func wrapperFor(hs []BoundHandle, class, namespace string) (BoundHandle, bool) {
	for _, h := range hs {
		if h.CsType == class && (namespace == "" || namespace == h.Namespace) {
			return h, true
		}
	}
	return BoundHandle{}, false
}

// RenderClass renders a class directive and its members.
func RenderClass(c managedapi.Class) []string {
	var out code
	out.summary(c.Summary)
	out.open(classDecl(c.Access, c.Modifiers, c.Class))
	renderItems(&out, c.Methods)
	out.close()
	return out.lines
}

func classDecl(access, modifiers, class string) string {
	parts := []string{}
	for _, p := range []string{access, modifiers} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if !strings.Contains(" "+modifiers+" ", " partial ") {
		parts = append(parts, "partial")
	}
	return strings.Join(append(parts, "class", class), " ")
}

// RenderCallbackClass renders a callback adapter: managed callback
// properties, the delegates kept alive for the native side, and BuildNative
// which fills the native callback struct.
func RenderCallbackClass(cb managedapi.CallbackClass) []string {
	var c code
	c.summary(cb.Summary)
	c.open(classDecl(cb.Access, "sealed partial", cb.Class))

	for _, f := range cb.Fields {
		c.line(fmt.Sprintf("public %s %s { get; set; }", f.ManagedType, f.ManagedName))
	}
	if len(cb.Fields) > 0 {
		c.blank()
	}
	for _, f := range cb.Fields {
		c.line(fmt.Sprintf("private %s? %s;", strings.TrimSuffix(f.BackingType, "?"), f.BackingName))
	}
	if len(cb.Fields) > 0 {
		c.blank()
	}

	native := naming.TypeName(cb.NativeStruct, true)
	c.open(fmt.Sprintf("internal %s BuildNative()", native))
	c.line(fmt.Sprintf("var native = new %s();", native))
	for _, f := range cb.Fields {
		for _, line := range RenderAssignment(f.BackingName, f.Assignment) {
			c.line(line)
		}
		c.line(fmt.Sprintf("native.%s = %s;", Ident(f.NativeField), f.BackingName))
	}
	c.line("return native;")
	c.close()

	if len(cb.Methods) > 0 {
		c.blank()
		renderItems(&c, cb.Methods)
	}
	c.close()
	return c.lines
}

// RenderAssignment renders "field = expr;". Continuation lines of a
// multi-line expression get one extra indent level unless the second line
// opens a block; a missing trailing ';' is added.
func RenderAssignment(field string, expr []string) []string {
	if len(expr) == 0 {
		return nil
	}
	out := make([]string, 0, len(expr))
	out = append(out, field+" = "+expr[0])
	indent := "    "
	if len(expr) > 1 && strings.HasPrefix(strings.TrimSpace(expr[1]), "{") {
		indent = ""
	}
	for _, line := range expr[1:] {
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, indent+line)
	}
	last := len(out) - 1
	for last > 0 && out[last] == "" {
		last--
	}
	if !strings.HasSuffix(strings.TrimRight(out[last], " "), ";") {
		out[last] = strings.TrimRight(out[last], " ") + ";"
	}
	return out
}

// renderItems writes members separated by blank lines, except between two
// adjacent verbatim lines.
func renderItems(c *code, items []managedapi.MethodItem) {
	for i, item := range items {
		if i > 0 && !(items[i-1].Kind == managedapi.ItemVerbatim && item.Kind == managedapi.ItemVerbatim) {
			c.blank()
		}
		switch item.Kind {
		case managedapi.ItemVerbatim:
			c.line(item.Line)
		case managedapi.ItemMethod:
			c.open(item.Signature)
			for _, line := range item.Body {
				c.line(line)
			}
			c.close()
		case managedapi.ItemBlock:
			for _, line := range item.Lines {
				c.line(line)
			}
		}
	}
}
