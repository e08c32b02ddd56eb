// Package csharp renders the C# sections generated from the ABI, handle and
// managed-API models. Every renderer returns plain lines; Section.Render
// wraps them in the common file header.
package csharp

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// FileSuffix is appended to section names for default file names.
const FileSuffix = ".g.cs"

// Section is one named unit of generated output.
type Section struct {
	Name      string
	Class     string
	Namespace string
	Usings    []string
	Lines     []string
	// Origin is the dotted input path of the directive that produced the
	// section.
	Origin string
}

// DefaultFileName is the file name used when no output hint applies.
func (s Section) DefaultFileName() string {
	return s.Name + FileSuffix
}

// Header describes the generated-file banner.
type Header struct {
	// Generator names the tool in the banner.
	Generator string
	// Command reproduces the run; omitted when empty.
	Command []string
}

// Render produces the complete file text for a section.
func (s Section) Render(h Header) string {
	var sb strings.Builder
	sb.WriteString("// <auto-generated />\n")
	generator := h.Generator
	if generator == "" {
		generator = "interopgen"
	}
	sb.WriteString("// Generated by " + generator + ". Do not edit by hand.\n")
	if len(h.Command) > 0 {
		sb.WriteString("// Regenerate with: " + shellquote.Join(h.Command...) + "\n")
	}
	sb.WriteString("#nullable enable\n\n")

	if len(s.Usings) > 0 {
		for _, u := range s.Usings {
			sb.WriteString("using " + u + ";\n")
		}
		sb.WriteString("\n")
	}
	if s.Namespace != "" {
		sb.WriteString("namespace " + s.Namespace + ";\n\n")
	}

	lines := trimBlankEdges(s.Lines)
	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func trimBlankEdges(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// code accumulates indented lines.
type code struct {
	lines  []string
	indent int
}

func (c *code) line(text string) {
	if text == "" {
		c.lines = append(c.lines, "")
		return
	}
	c.lines = append(c.lines, strings.Repeat("    ", c.indent)+text)
}

func (c *code) blank() {
	if len(c.lines) > 0 && c.lines[len(c.lines)-1] != "" {
		c.lines = append(c.lines, "")
	}
}

func (c *code) open(text string) {
	c.line(text)
	c.line("{")
	c.indent++
}

func (c *code) close() {
	if n := len(c.lines); n > 0 && c.lines[n-1] == "" {
		c.lines = c.lines[:n-1]
	}
	c.indent--
	c.line("}")
}

// summary writes a /// <summary> block, one line per source line.
func (c *code) summary(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.line("/// <summary>")
	for _, l := range strings.Split(text, "\n") {
		c.line(strings.TrimRight("/// "+strings.TrimSpace(l), " "))
	}
	c.line("/// </summary>")
}
