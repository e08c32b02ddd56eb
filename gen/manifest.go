package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/version"
)

// DefaultManifestName is the manifest file kept inside the output directory.
const DefaultManifestName = ".interopgen.toml"

// Manifest records the file set of the last run.
type Manifest struct {
	// Schema is version.ManifestSchema at write time; 0 reads as 1.
	Schema    int             `toml:"schema"`
	Generator string          `toml:"generator"`
	Build     string          `toml:"build,omitempty"`
	Target    string          `toml:"target,omitempty"`
	Files     []ManifestEntry `toml:"files"`
}

// ManifestEntry is one generated file.
type ManifestEntry struct {
	Path    string `toml:"path"`
	Section string `toml:"section"`
	SHA256  string `toml:"sha256"`
}

// NewManifest describes a result.
func NewManifest(generator string, result *Result) *Manifest {
	m := &Manifest{
		Schema:    version.ManifestSchema,
		Generator: generator,
		Build:     version.Get().Generator(),
		Target:    result.Target,
	}
	for _, f := range result.Files {
		m.Files = append(m.Files, ManifestEntry{
			Path:    f.Path,
			Section: f.Section,
			SHA256:  Checksum(f.Content),
		})
	}
	return m
}

// Checksum is the hex SHA-256 of generated content.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Entry looks up a file by relative path.
func (m *Manifest) Entry(path string) (ManifestEntry, bool) {
	for _, e := range m.Files {
		if e.Path == path {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// ReadManifest loads a manifest. A missing file yields nil without error. A
// manifest written with a newer schema is refused, since stale-file removal
// would act on entries this build cannot interpret.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %s", path)
	}
	if m.Schema > version.ManifestSchema {
		return nil, errors.WithHint(
			errors.Newf("manifest %s has schema %d, this build reads up to %d", path, m.Schema, version.ManifestSchema),
			"upgrade interopgen or delete the manifest to regenerate from scratch")
	}
	if m.Schema == 0 {
		m.Schema = 1
	}
	return &m, nil
}

// WriteManifest stores m at path.
func WriteManifest(path string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}
	header := []byte("# Generated by " + m.Generator + ". Lists the files of the last run.\n")
	return writeAtomic(path, append(header, data...))
}
