package config

import (
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/managedapi"
)

// Validate checks that the configuration is usable for a run
func (c *Config) Validate() error {
	if c.Inputs.IDL == "" {
		return errors.New("inputs.idl is required")
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir cannot be empty")
	}

	// Debounce: 0 = default, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	if _, err := managedapi.CompilePatterns(c.Required.Patterns); err != nil {
		return errors.Wrap(err, "required.patterns")
	}
	return nil
}
