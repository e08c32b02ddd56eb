package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/interopgen/errors"
)

// Load reads the configuration. An explicit path must exist; otherwise
// interopgen.toml is searched for from the working directory upwards, and
// defaults plus INTEROPGEN_* environment variables apply when none is found.
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine working directory")
		}
		path = FindProjectConfig(wd)
	}
	return LoadWithViper(newViper(), path)
}

// LoadWithViper loads configuration using a provided Viper instance, reading
// path into it first when path is not empty
func LoadWithViper(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	base, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine working directory")
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s", path)
		}
		cfg.File = abs
		base = filepath.Dir(abs)
	}
	cfg.resolvePaths(base)
	return &cfg, nil
}

// newViper initializes Viper with environment binding and defaults
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// FindProjectConfig searches for interopgen.toml by walking up from dir.
// Returns the path to the first file found, or empty string if none found.
func FindProjectConfig(dir string) string {
	for {
		candidate := filepath.Join(dir, DefaultFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
