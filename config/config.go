// Package config loads interopgen.toml, the project file naming the input
// documents and the output directory of a generation run.
package config

import (
	"path/filepath"
	"time"
)

// Config represents the interopgen project configuration
type Config struct {
	// Target overrides the target identifier from the ABI description.
	Target   string         `mapstructure:"target" toml:"target" json:"target" yaml:"target"`
	Inputs   InputsConfig   `mapstructure:"inputs" toml:"inputs" json:"inputs" yaml:"inputs"`
	Output   OutputConfig   `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
	Required RequiredConfig `mapstructure:"required" toml:"required" json:"required" yaml:"required"`

	// File is the configuration file the values were read from, empty when
	// only defaults and the environment applied.
	File string `mapstructure:"-" toml:"-" json:"-" yaml:"-"`
}

// InputsConfig names the input documents. JSON and YAML are both accepted.
type InputsConfig struct {
	IDL        string `mapstructure:"idl" toml:"idl" json:"idl" yaml:"idl"`
	Handles    string `mapstructure:"handles" toml:"handles" json:"handles" yaml:"handles"`
	ManagedAPI string `mapstructure:"managed_api" toml:"managed_api" json:"managed_api" yaml:"managed_api"`
}

// OutputConfig configures where generated files go
type OutputConfig struct {
	Dir string `mapstructure:"dir" toml:"dir" json:"dir" yaml:"dir"`
	// Manifest defaults to .interopgen.toml inside Dir.
	Manifest    string `mapstructure:"manifest" toml:"manifest" json:"manifest" yaml:"manifest"`
	NativeClass string `mapstructure:"native_class" toml:"native_class" json:"native_class" yaml:"native_class"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"` // 0 = default
}

// RequiredConfig configures required-function derivation
type RequiredConfig struct {
	// Patterns replace the default native-call patterns; each must capture
	// the function name in its first group.
	Patterns []string `mapstructure:"patterns" toml:"patterns" json:"patterns" yaml:"patterns"`
}

// Debounce returns the watch debounce as a duration
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// ManifestPath returns the manifest location, defaulting inside the output
// directory
func (c *Config) ManifestPath() string {
	if c.Output.Manifest != "" {
		return c.Output.Manifest
	}
	return filepath.Join(c.Output.Dir, DefaultManifestName)
}

// resolvePaths makes every relative path relative to base instead of the
// working directory.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{
		&c.Inputs.IDL,
		&c.Inputs.Handles,
		&c.Inputs.ManagedAPI,
		&c.Output.Dir,
		&c.Output.Manifest,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
