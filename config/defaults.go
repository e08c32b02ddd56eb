package config

import "github.com/spf13/viper"

const (
	// DefaultFileName is the project configuration file searched for by Load.
	DefaultFileName = "interopgen.toml"
	// DefaultManifestName is the manifest file written inside the output directory.
	DefaultManifestName = ".interopgen.toml"
	// EnvPrefix prefixes environment overrides, e.g. INTEROPGEN_OUTPUT_DIR.
	EnvPrefix = "INTEROPGEN"
	// DefaultDebounceMS is the watch-mode debounce.
	DefaultDebounceMS = 300
)

// SetDefaults configures default values for all configuration options.
// Every key is registered so that environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("target", "")

	v.SetDefault("inputs.idl", "")
	v.SetDefault("inputs.handles", "")
	v.SetDefault("inputs.managed_api", "")

	v.SetDefault("output.dir", "Generated")
	v.SetDefault("output.manifest", "")
	v.SetDefault("output.native_class", "")

	v.SetDefault("log.json", false)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)

	v.SetDefault("required.patterns", []string{})
}
