package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/interopgen/cmd/interopgen/commands"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "interopgen",
	Short: "interopgen - C ABI to C# interop source generator",
	Long: `interopgen - Generate C# interop bindings from a C ABI description.

interopgen reads a machine-readable description of a native library (functions,
structs, enums, callback typedefs, constants), a description of its opaque
handles, and a description of the managed API built on top, and emits
deterministic C# source files.

Available commands:
  generate - Write the generated C# files
  check    - Verify generated files are up to date
  watch    - Regenerate whenever an input changes
  required - List native functions the managed API calls
  config   - Inspect interopgen configuration
  version  - Show version information

Examples:
  interopgen generate          # Generate using ./interopgen.toml
  interopgen check             # Fail when the output is stale
  interopgen watch -v          # Regenerate on change with info logging`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: nearest interopgen.toml)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.RequiredCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}
