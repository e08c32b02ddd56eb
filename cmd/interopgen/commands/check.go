package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/interopgen/config"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/gen"
	"github.com/teranos/interopgen/logger"
)

// ErrOutOfDate is returned by check when the output directory differs from
// a fresh run.
var ErrOutOfDate = errors.New("generated files are out of date")

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify generated files are up to date",
	Long: `Run the generator without writing and compare the result with the output
directory. Stale files are shown as unified diffs. Exits non-zero when any
file is missing, stale, or left over from an earlier run.

Examples:
  interopgen check    # Fail CI when the bindings need regenerating`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runCheck(cfg)
	},
}

func runCheck(cfg *config.Config) error {
	result, err := gen.Run(genOptions(cfg, logger.Named("gen")))
	if err != nil {
		return err
	}
	manifest, err := gen.ReadManifest(cfg.ManifestPath())
	if err != nil {
		return err
	}
	report, err := gen.Check(cfg.Output.Dir, result.Files, manifest)
	if err != nil {
		return err
	}

	if report.UpToDate() {
		pterm.Success.Printfln("%d generated files are up to date", report.Checked)
		return nil
	}

	for _, d := range report.Drift {
		switch d.Kind {
		case gen.DriftMissing:
			pterm.Error.Printfln("%s is missing", d.Path)
		case gen.DriftStale:
			pterm.Error.Printfln("%s is stale", d.Path)
			printDiff(d.Diff)
		case gen.DriftOrphan:
			pterm.Error.Printfln("%s is no longer generated", d.Path)
		}
	}
	pterm.Info.Println("Run 'interopgen generate' to update the output directory")
	return errors.Wrapf(ErrOutOfDate, "%d of %d files", len(report.Drift), report.Checked)
}

func printDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			pterm.Print(pterm.Bold.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			pterm.Print(pterm.FgCyan.Sprint(line))
		case strings.HasPrefix(line, "+"):
			pterm.Print(pterm.FgGreen.Sprint(line))
		case strings.HasPrefix(line, "-"):
			pterm.Print(pterm.FgRed.Sprint(line))
		default:
			pterm.Print(line)
		}
	}
}
