// Package version reports build information for the interopgen binary and
// the versions of the document layouts it reads and writes.
package version

import (
	"fmt"
	"runtime"

	"github.com/teranos/interopgen/managedapi"
)

// ManifestSchema is the layout of the manifest kept in the output directory.
// Manifests carrying a higher number are refused.
const ManifestSchema = 1

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info describes the binary and the schemas it understands.
type Info struct {
	Version          string `json:"version"`
	CommitHash       string `json:"commit_hash"`
	BuildTime        string `json:"build_time"`
	ManifestSchema   int    `json:"manifest_schema"`
	ManagedAPISchema int    `json:"managed_api_schema"`
	GoVersion        string `json:"go_version"`
	Platform         string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		Version:          Version,
		CommitHash:       CommitHash,
		BuildTime:        BuildTime,
		ManifestSchema:   ManifestSchema,
		ManagedAPISchema: managedapi.SchemaVersion,
		GoVersion:        runtime.Version(),
		Platform:         fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("interopgen %s (commit %s, built %s)", i.Version, i.short(), i.BuildTime)
}

// Schemas lists the document layouts this build reads and writes.
func (i Info) Schemas() string {
	return fmt.Sprintf("manifest schema %d, managed_api schema_version %d", i.ManifestSchema, i.ManagedAPISchema)
}

// Generator is the generator string recorded in manifests, e.g.
// "interopgen v0.3.0". Development builds record the commit instead.
func (i Info) Generator() string {
	if i.Version == "" || i.Version == "dev" {
		return "interopgen dev+" + i.short()
	}
	return "interopgen " + i.Version
}

func (i Info) short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
