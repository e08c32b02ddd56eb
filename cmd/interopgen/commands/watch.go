package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/interopgen/config"
	"github.com/teranos/interopgen/gen"
	"github.com/teranos/interopgen/logger"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate whenever an input document changes",
	Long: `Generate once, then watch the input documents and regenerate after each
change settles (watch.debounce_ms). A failing run is reported and watching
continues. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cfg)
	},
}

func runWatch(ctx context.Context, cfg *config.Config) error {
	log := logger.Named("watch")
	opts := genOptions(cfg, logger.Named("gen"))

	emit := func() error {
		result, report, err := gen.Emit(opts, cfg.Output.Dir, cfg.ManifestPath())
		if err != nil {
			pterm.Error.Println(err.Error())
			return err
		}
		printWriteReport(cfg, result, report)
		return nil
	}
	_ = emit()

	paths := []string{cfg.Inputs.IDL, cfg.Inputs.Handles, cfg.Inputs.ManagedAPI}
	w, err := gen.NewWatcher(paths, cfg.Debounce(), log)
	if err != nil {
		return err
	}
	defer w.Close()

	pterm.Info.Println("Watching input documents (Ctrl+C to stop)")
	return w.Run(ctx, emit)
}
