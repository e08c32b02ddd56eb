package commands

import (
	"encoding/json"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/interopgen/config"
	"github.com/teranos/interopgen/errors"
	"github.com/teranos/interopgen/gen"
	"github.com/teranos/interopgen/logger"
)

// RequiredCmd represents the required command
var RequiredCmd = &cobra.Command{
	Use:   "required",
	Short: "List native functions the managed API calls",
	Long: `Scan the managed-API description for calls through the native class and
print the registry functions it references. Functions missing from
required_native_functions are marked.

Examples:
  interopgen required            # Print the derived list
  interopgen required --json     # Print it as JSON
  interopgen required --strict   # Fail when any function is not declared`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		strict, _ := cmd.Flags().GetBool("strict")
		return runRequired(cfg, jsonOutput, strict)
	},
}

func init() {
	RequiredCmd.Flags().BoolP("json", "j", false, "Output the derived list as JSON")
	RequiredCmd.Flags().Bool("strict", false, "Exit non-zero when a derived function is not declared as required")
}

type requiredOutput struct {
	Derived []string `json:"derived"`
	Missing []string `json:"missing"`
}

func runRequired(cfg *config.Config, jsonOutput, strict bool) error {
	result, err := gen.Run(genOptions(cfg, logger.Named("gen")))
	if err != nil {
		return err
	}

	if jsonOutput {
		out := requiredOutput{Derived: result.DerivedRequired, Missing: result.MissingRequired}
		if out.Derived == nil {
			out.Derived = []string{}
		}
		if out.Missing == nil {
			out.Missing = []string{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal required functions")
		}
		pterm.Println(string(data))
	} else {
		missing := make(map[string]bool, len(result.MissingRequired))
		for _, name := range result.MissingRequired {
			missing[name] = true
		}
		for _, name := range result.DerivedRequired {
			if missing[name] {
				pterm.Printfln("%s %s", name, pterm.FgYellow.Sprint("(not declared)"))
				continue
			}
			pterm.Println(name)
		}
		pterm.Info.Printfln("%d functions referenced, %d not declared", len(result.DerivedRequired), len(result.MissingRequired))
	}

	if strict && len(result.MissingRequired) > 0 {
		return errors.Newf("%d referenced native functions are not declared as required", len(result.MissingRequired))
	}
	return nil
}
