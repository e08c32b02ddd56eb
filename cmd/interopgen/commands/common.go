package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/interopgen/config"
	"github.com/teranos/interopgen/csharp"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/gen"
	"github.com/teranos/interopgen/logger"
)

// readConfig loads the configuration named by --config without validating it.
func readConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	// log.json in the file switches the logger when --log-json was not given
	if cfg.Log.JSON && !logger.JSONOutput {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(true, verbosity); err != nil {
			return nil, errors.Wrap(err, "failed to initialize logger")
		}
	}
	return cfg, nil
}

// loadConfig loads and validates the configuration for a generation run.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := readConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if cfg.File == "" {
			return nil, errors.Wrapf(err, "no %s found and no --config given", config.DefaultFileName)
		}
		return nil, errors.Wrapf(err, "invalid config %s", cfg.File)
	}
	return cfg, nil
}

// genOptions maps the configuration onto one generator run.
func genOptions(cfg *config.Config, log *zap.SugaredLogger) gen.Options {
	return gen.Options{
		IDLPath:          cfg.Inputs.IDL,
		HandlesPath:      cfg.Inputs.Handles,
		ManagedAPIPath:   cfg.Inputs.ManagedAPI,
		Target:           cfg.Target,
		NativeClass:      cfg.Output.NativeClass,
		RequiredPatterns: cfg.Required.Patterns,
		Header: csharp.Header{
			Generator: gen.DefaultGenerator,
			Command:   reproduction(cfg),
		},
		Log: log,
	}
}

// reproduction is the command recorded in every file header. Only the
// config file name goes in so that the header does not depend on where the
// project is checked out.
func reproduction(cfg *config.Config) []string {
	command := []string{gen.DefaultGenerator, "generate"}
	if cfg.File != "" && filepath.Base(cfg.File) != config.DefaultFileName {
		command = append(command, "--config", filepath.Base(cfg.File))
	}
	return command
}
