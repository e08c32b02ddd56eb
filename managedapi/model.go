// Package managedapi parses the managed-API description: the hand-authored
// directives for callback adapter classes, builder and async helpers,
// handle API partial classes, custom sections and the auto ABI surface.
//
// Member bodies are carried as text. Nothing here parses C#.
package managedapi

import (
	"github.com/teranos/interopgen/hints"
)

// SchemaVersion is the only accepted schema_version.
const SchemaVersion = 2

// RootPath prefixes every error location inside a managed-API description.
const RootPath = "managed_api"

// Defaults for optional settings.
const (
	DefaultAccess              = "public"
	DefaultModifiers           = "partial"
	DefaultMethodPrefix        = "Abi"
	DefaultSectionSuffix       = ".Abi"
	DefaultFacadeClassSuffix   = "Extensions"
	DefaultFacadeSectionSuffix = ".Facade"
)

// DefaultUsings are emitted when the description lists none.
var DefaultUsings = []string{"System", "System.Runtime.InteropServices"}

// Model is the parsed managed-API description.
type Model struct {
	Namespace               string
	Usings                  []string
	RequiredNativeFunctions []string

	Callbacks           []CallbackClass
	Builder             *Class
	PeerConnectionAsync *Class
	HandleAPI           []Class
	CustomSections      []CustomSection

	AutoSurface AutoSurface
	OutputHints hints.Config
}

// CallbackClass adapts managed delegates to one native callback struct.
type CallbackClass struct {
	Class        string
	Access       string
	Summary      string
	NativeStruct string
	Fields       []CallbackField
	Methods      []MethodItem
	Path         string
}

// CallbackField wires one managed callback to one native struct field.
type CallbackField struct {
	ManagedName string
	ManagedType string
	BackingName string
	BackingType string
	NativeField string
	// Assignment is the expression assigned to the backing field, one entry
	// per source line.
	Assignment []string
	Path       string
}

// Class is a generic class directive: builder, async helper or handle API.
type Class struct {
	Class     string
	Namespace string
	Access    string
	Modifiers string
	Summary   string
	Methods   []MethodItem
	Path      string
}

// CustomSection is a free-form class rendered into its own section.
type CustomSection struct {
	Section    string
	Class      Class
	OutputHint string
	Path       string
}

// AutoSurface configures the generated ABI forwarding surface.
type AutoSurface struct {
	Enabled           bool
	MethodPrefix      string
	SectionSuffix     string
	IncludeDeprecated bool
	Facade            Facade
}

// Facade configures the public subset of the auto surface.
type Facade struct {
	Enabled       bool
	Access        string
	ClassSuffix   string
	MethodPrefix  string
	SectionSuffix string
	AllowIntPtr   bool
}
