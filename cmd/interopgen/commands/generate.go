package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/interopgen/config"
	"github.com/teranos/interopgen/gen"
	"github.com/teranos/interopgen/logger"
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate C# interop sources",
	Long: `Read the ABI, handle and managed-API descriptions named in interopgen.toml
and write one C# file per section into the output directory.

Nothing is written unless every section renders. Files whose content did not
change are left untouched, and files produced by an earlier run that this run
no longer produces are removed.

Examples:
  interopgen generate                 # Generate using ./interopgen.toml
  interopgen generate --dry-run       # List the files without writing
  interopgen generate -c abi/gen.toml # Use an explicit config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return runGenerate(cfg, dryRun)
	},
}

func init() {
	GenerateCmd.Flags().Bool("dry-run", false, "List the files that would be generated without writing them")
}

func runGenerate(cfg *config.Config, dryRun bool) error {
	opts := genOptions(cfg, logger.Named("gen"))

	if dryRun {
		pterm.Warning.Println("DRY RUN MODE: No files will be written")
		result, err := gen.Run(opts)
		if err != nil {
			return err
		}
		for _, f := range result.Files {
			pterm.Printfln("  %s (%s, %d bytes)", f.Path, f.Section, len(f.Content))
		}
		pterm.Info.Printfln("%d files for target %s", len(result.Files), result.Target)
		reportMissingRequired(result)
		return nil
	}

	result, report, err := gen.Emit(opts, cfg.Output.Dir, cfg.ManifestPath())
	if err != nil {
		return err
	}
	printWriteReport(cfg, result, report)
	return nil
}

func printWriteReport(cfg *config.Config, result *gen.Result, report *gen.WriteReport) {
	pterm.Success.Printfln("Generated %d files for target %s in %s", len(result.Files), result.Target, cfg.Output.Dir)
	pterm.Printfln("  Written:   %d", len(report.Written))
	pterm.Printfln("  Unchanged: %d", len(report.Unchanged))
	if len(report.Removed) > 0 {
		pterm.Printfln("  Removed:   %d", len(report.Removed))
	}
	reportMissingRequired(result)
}

func reportMissingRequired(result *gen.Result) {
	for _, name := range result.MissingRequired {
		pterm.Warning.Printfln("%s is called but not listed in required_native_functions", name)
	}
}
