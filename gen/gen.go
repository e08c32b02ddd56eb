// Package gen runs the whole generation pipeline: it loads the input
// documents, builds the models, renders every section, places each section
// with the output hints and hands back an ordered file set. Writing, checking
// and watching live next to it and all consume that file set.
package gen

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/teranos/interopgen/abi"
	"github.com/teranos/interopgen/csharp"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/handles"
	"github.com/teranos/interopgen/hints"
	"github.com/teranos/interopgen/internal/doc"
	"github.com/teranos/interopgen/logger"
	"github.com/teranos/interopgen/managedapi"
)

// Options configures one run.
type Options struct {
	// IDLPath is the ABI description. Required.
	IDLPath string
	// HandlesPath is the handle description. Optional.
	HandlesPath string
	// ManagedAPIPath is the managed-API description. Optional.
	ManagedAPIPath string

	// Target overrides the ABI description's target identifier.
	Target string
	// NativeClass overrides the class hosting the P/Invoke entry points.
	NativeClass string
	// RequiredPatterns replace the default native-call patterns used to
	// derive required functions.
	RequiredPatterns []string

	Header csharp.Header
	Log    *zap.SugaredLogger
}

// Inputs are the decoded input documents. Handles and ManagedAPI may be
// null nodes.
type Inputs struct {
	IDL        doc.Node
	Handles    doc.Node
	ManagedAPI doc.Node
}

// File is one generated output file.
type File struct {
	Section string
	// Path is relative to the output directory, slash-separated.
	Path    string
	Content string
}

// Result is the outcome of a successful run.
type Result struct {
	Target string
	Files  []File
	// DerivedRequired lists registry functions the managed-API document
	// calls through the native class.
	DerivedRequired []string
	// MissingRequired lists derived functions not declared as required.
	MissingRequired []string
}

// Load reads the documents named in opts.
func Load(opts Options) (Inputs, error) {
	if opts.IDLPath == "" {
		return Inputs{}, errors.New("no ABI description given")
	}
	var in Inputs
	var err error
	if in.IDL, err = doc.Load(opts.IDLPath, abi.RootPath); err != nil {
		return Inputs{}, err
	}
	in.Handles = doc.Node{Path: handles.RootPath}
	if opts.HandlesPath != "" {
		if in.Handles, err = doc.Load(opts.HandlesPath, handles.RootPath); err != nil {
			return Inputs{}, err
		}
	}
	in.ManagedAPI = doc.Node{Path: managedapi.RootPath}
	if opts.ManagedAPIPath != "" {
		if in.ManagedAPI, err = doc.Load(opts.ManagedAPIPath, managedapi.RootPath); err != nil {
			return Inputs{}, err
		}
	}
	return in, nil
}

// Run loads the inputs and generates.
func Run(opts Options) (*Result, error) {
	in, err := Load(opts)
	if err != nil {
		return nil, err
	}
	return Generate(in, opts)
}

// Generate turns decoded inputs into the ordered file set. It either
// succeeds completely or returns the first error.
func Generate(in Inputs, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	model, err := abi.Parse(in.IDL, log)
	if err != nil {
		return nil, err
	}
	if opts.Target != "" {
		model.Target = opts.Target
	}
	if opts.NativeClass != "" {
		model.NativeClass = opts.NativeClass
	}
	log.Infow("Loaded ABI description",
		logger.FieldTarget, model.Target,
		"functions", len(model.Functions),
		"structs", len(model.Structs),
		"enums", len(model.Enums),
		"callbacks", len(model.Callbacks))

	var hs []handles.Handle
	if !in.Handles.IsNull() {
		if hs, err = handles.Parse(in.Handles); err != nil {
			return nil, err
		}
	}

	var api *managedapi.Model
	if !in.ManagedAPI.IsNull() {
		if api, err = managedapi.Parse(in.ManagedAPI); err != nil {
			return nil, err
		}
		if err := api.Validate(model); err != nil {
			return nil, err
		}
	}

	handleNamespace := model.Namespace
	if api != nil {
		handleNamespace = api.Namespace
	}
	bound, err := csharp.BindHandles(model, hs, handleNamespace)
	if err != nil {
		return nil, err
	}

	sections, err := buildSections(model, bound, api, log)
	if err != nil {
		return nil, err
	}
	if err := checkSectionNames(sections); err != nil {
		return nil, err
	}

	files, err := placeSections(model, api, sections, opts.Header)
	if err != nil {
		return nil, err
	}
	log.Debugw("Placed sections", "sections", len(sections), logger.FieldCount, len(files))

	result := &Result{Target: model.Target, Files: files}
	if api != nil {
		patterns, err := requiredPatterns(model, opts.RequiredPatterns)
		if err != nil {
			return nil, err
		}
		result.DerivedRequired = managedapi.DeriveRequiredFunctions(in.ManagedAPI, model, patterns)
		result.MissingRequired = api.MissingRequired(result.DerivedRequired)
		for _, name := range result.MissingRequired {
			log.Warnw("Native function is called but not listed as required",
				logger.FieldFunction, name,
				"list", managedapi.RootPath+".required_native_functions")
		}
	}
	return result, nil
}

func buildSections(model *abi.Model, bound []csharp.BoundHandle, api *managedapi.Model, log *zap.SugaredLogger) ([]csharp.Section, error) {
	sections, err := csharp.InteropSections(model, model.SynthesizeDelegates(log))
	if err != nil {
		return nil, err
	}
	for _, h := range bound {
		sections = append(sections, csharp.HandleSection(model, h))
	}
	if api == nil {
		return sections, nil
	}

	if opts := api.AutoSurface; opts.Enabled {
		surfaces := csharp.BuildSurface(model, bound, opts)
		for _, s := range surfaces {
			if section, ok := csharp.SurfaceSection(model, s, opts); ok {
				sections = append(sections, section)
			} else {
				log.Debugw("Handle has no surface functions", "handle", s.Handle.QualifiedName())
			}
		}
		if opts.Facade.Enabled {
			for _, f := range csharp.BuildFacade(surfaces, bound, opts) {
				if section, ok := csharp.FacadeSection(model, f, opts); ok {
					sections = append(sections, section)
				}
			}
		}
	}
	return append(sections, csharp.ManagedSections(model, api, bound)...), nil
}

// checkSectionNames rejects two sections with the same name; each name maps
// to exactly one file.
func checkSectionNames(sections []csharp.Section) error {
	seen := make(map[string]string, len(sections))
	for _, s := range sections {
		if first, dup := seen[s.Name]; dup {
			return errors.Uniqueness(s.Origin, "section %q is already produced by %s", s.Name, first)
		}
		seen[s.Name] = s.Origin
	}
	return nil
}

// mergedHints layers the managed-API hints over the ABI hints; a custom
// section's own output_hint wins for that section.
func mergedHints(model *abi.Model, api *managedapi.Model) hints.Config {
	cfg := model.OutputHints
	if api == nil {
		return cfg
	}
	cfg = cfg.Merge(api.OutputHints)
	for _, s := range api.CustomSections {
		if s.OutputHint != "" {
			cfg.Sections[s.Section] = s.OutputHint
		}
	}
	return cfg
}

func placeSections(model *abi.Model, api *managedapi.Model, sections []csharp.Section, header csharp.Header) ([]File, error) {
	resolver := hints.NewResolver(mergedHints(model, api), model.Target)
	files := make([]File, 0, len(sections))
	owners := make(map[string]string, len(sections))
	for _, s := range sections {
		path, err := resolver.Resolve(hints.Section{
			Name:      s.Name,
			Class:     s.Class,
			Namespace: s.Namespace,
			Default:   s.DefaultFileName(),
		})
		if err != nil {
			return nil, err
		}
		if other, dup := owners[path]; dup {
			return nil, errors.Uniqueness(s.Origin, "sections %q and %q both resolve to %s", other, s.Name, path)
		}
		owners[path] = s.Name
		files = append(files, File{Section: s.Name, Path: path, Content: s.Render(header)})
	}
	return files, nil
}

func requiredPatterns(model *abi.Model, sources []string) ([]*regexp.Regexp, error) {
	if len(sources) == 0 {
		return managedapi.NativeCallPatterns(model.NativeClass), nil
	}
	return managedapi.CompilePatterns(sources)
}
