package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"folio/internal/risk"
	"folio/internal/store"
)

// addSyncCommands adds the sync, watch and risk commands.
func addSyncCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSyncCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newRiskCmd(app))
}

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Regenerate events and reconcile the notification schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			result, err := app.Engine.Resync(cmd.Context())
			if err != nil {
				return err
			}
			app.Scheduler.Flush(cmd.Context())

			if output.IsJSON() {
				return output.JSON(result)
			}
			output.Success("Sync complete")
			output.Printf("  applied contributions: %d\n", result.Applied)
			output.Printf("  candidates: %d (inserted %d, updated %d, removed %d)\n",
				result.Candidates, result.Sync.Inserted, result.Sync.Updated, result.Sync.Removed)
			return nil
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the resync and delivery loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			output.Info("Watching portfolio; press Ctrl-C to stop")
			err := app.Engine.Watch(ctx)
			output.Println("Stopped.")
			if err == ctx.Err() {
				return nil
			}
			return err
		},
	}
}

func newRiskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "risk",
		Short: "Show the portfolio risk summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			assets, err := app.Store.ListAssets(cmd.Context(), store.AssetFilter{})
			if err != nil {
				return err
			}

			summary := risk.Analyze(assets)
			if output.IsJSON() {
				return output.JSON(summary)
			}

			output.Header("Risk summary")
			output.Printf("Overall score: %.1f / 10\n", summary.OverallScore)
			if len(summary.Suggestions) == 0 {
				output.Success("No suggestions; allocation looks balanced")
				return nil
			}
			for _, s := range summary.Suggestions {
				output.Printf("  - %s\n", s)
			}
			return nil
		},
	}
}
