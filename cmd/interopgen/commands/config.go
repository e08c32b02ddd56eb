package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/interopgen/config"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect interopgen configuration",
	Long: `Display the effective interopgen configuration.

Configuration sources (in order of precedence):
1. Environment variables (INTEROPGEN_* prefix, e.g. INTEROPGEN_OUTPUT_DIR)
2. Config file (--config, or the nearest interopgen.toml upwards)
3. Default values

Examples:
  interopgen config show                 # Show current configuration
  interopgen config show --format json   # Show configuration in JSON format`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return runConfigShow(cfg, format)
	},
}

func init() {
	configShowCmd.Flags().String("format", config.FormatTOML, "Output format: toml, json, yaml")
	ConfigCmd.AddCommand(configShowCmd)
}

func runConfigShow(cfg *config.Config, format string) error {
	data, err := config.Marshal(cfg, format)
	if err != nil {
		return err
	}
	if format != config.FormatJSON {
		source := cfg.File
		if source == "" {
			source = "defaults"
		}
		pterm.Printfln("# interopgen configuration (%s)", source)
	}
	pterm.Print(string(data))
	return nil
}
