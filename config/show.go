package config

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/interopgen/errors"
)

// Formats accepted by Marshal.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Marshal renders the effective configuration in the given format
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch format {
	case FormatTOML, "":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as TOML")
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as JSON")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as YAML")
		}
		return data, nil
	default:
		return nil, errors.Newf("unsupported format %q (want toml, json or yaml)", format)
	}
}
