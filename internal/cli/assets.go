package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"folio/internal/models"
	"folio/internal/recurrence"
	"folio/internal/store"
	"folio/pkg/utils"
)

// addAssetCommands adds the asset management command group.
func addAssetCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage portfolio assets",
	}

	cmd.AddCommand(newAssetAddCmd(app))
	cmd.AddCommand(newAssetListCmd(app))
	cmd.AddCommand(newAssetRemoveCmd(app))
	cmd.AddCommand(newAssetValueCmd(app))
	cmd.AddCommand(newAssetContributionCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAssetAddCmd(app *App) *cobra.Command {
	var (
		category  string
		currency  string
		value     float64
		maturity  string
		purchase  string
		manual    bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an asset to the portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			cat := models.AssetCategory(category)
			if !validCategory(cat) {
				return fmt.Errorf("unknown category %q (one of: %s)", category, strings.Join(categoryNames(), ", "))
			}

			now := time.Now()
			asset := &models.Asset{
				ID:              uuid.NewString(),
				Name:            args[0],
				Category:        cat,
				Currency:        strings.ToUpper(currency),
				Value:           value,
				ManualValuation: manual,
				CreatedAt:       now,
				UpdatedAt:       now,
			}

			if maturity != "" {
				t, err := time.ParseInLocation("2006-01-02", maturity, time.Local)
				if err != nil {
					return fmt.Errorf("parsing maturity date: %w", err)
				}
				t = recurrence.AtDueHour(t)
				asset.MaturityDate = &t
			}
			if purchase != "" {
				t, err := time.ParseInLocation("2006-01-02", purchase, time.Local)
				if err != nil {
					return fmt.Errorf("parsing purchase date: %w", err)
				}
				asset.PurchaseDate = &t
			}

			if err := app.Store.SaveAsset(cmd.Context(), asset); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(asset)
			}
			output.Success("Added %s (%s)", asset.Name, asset.ID)
			return resyncAfterChange(cmd, app, output)
		},
	}

	cmd.Flags().StringVar(&category, "category", "stock", "asset category")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	cmd.Flags().Float64Var(&value, "value", 0, "current value")
	cmd.Flags().StringVar(&maturity, "maturity", "", "maturity date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&purchase, "purchase", "", "purchase date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&manual, "manual", false, "asset is valued manually")

	return cmd
}

func newAssetListCmd(app *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List portfolio assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			assets, err := app.Store.ListAssets(cmd.Context(), store.AssetFilter{
				Category: models.AssetCategory(category),
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(assets)
			}

			if len(assets) == 0 {
				output.Dim("No assets yet. Add one with 'folio asset add'.")
				return nil
			}

			output.Header("Portfolio")
			for _, a := range assets {
				line := fmt.Sprintf("%-36s  %-12s  %-12s  %s",
					a.ID, a.Category, a.Name, utils.FormatAmount(a.Value, a.Currency))
				if a.MaturityDate != nil {
					line += fmt.Sprintf("  matures %s", a.MaturityDate.Format("02 Jan 2006"))
				}
				output.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}

func newAssetRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <asset-id>",
		Short: "Remove an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			if err := app.Store.DeleteAsset(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.Success("Removed asset %s", args[0])
			return resyncAfterChange(cmd, app, output)
		},
	}
}

func newAssetValueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "value <asset-id> <amount>",
		Short: "Record a new valuation for an asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			var amount float64
			if _, err := fmt.Sscanf(args[1], "%f", &amount); err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[1], err)
			}

			asset, err := app.Store.GetAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			now := time.Now()
			asset.Value = amount
			asset.ValueHistory = append(asset.ValueHistory, models.ValuePoint{Date: now, Value: amount})
			asset.UpdatedAt = now

			if err := app.Store.SaveAsset(cmd.Context(), asset); err != nil {
				return err
			}
			output.Success("%s valued at %s", asset.Name, utils.FormatAmount(amount, asset.Currency))
			return resyncAfterChange(cmd, app, output)
		},
	}
}

func newAssetContributionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contribution",
		Short: "Manage an asset's recurring contribution",
	}

	var (
		frequency string
		amount    float64
		weekday   int
		day       int
		autoApply bool
	)

	setCmd := &cobra.Command{
		Use:   "set <asset-id>",
		Short: "Configure a recurring contribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			freq := models.Frequency(frequency)
			if !freq.Valid() {
				return fmt.Errorf("unknown frequency %q (weekly, biweekly or monthly)", frequency)
			}

			asset, err := app.Store.GetAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			asset.Contribution = &models.RecurringContribution{
				Enabled:    true,
				Frequency:  freq,
				Weekday:    time.Weekday(weekday),
				DayOfMonth: recurrence.ClampDayOfMonth(day),
				Amount:     amount,
				AutoApply:  autoApply,
			}
			asset.UpdatedAt = time.Now()

			if err := app.Store.SaveAsset(cmd.Context(), asset); err != nil {
				return err
			}
			output.Success("Recurring %s contribution of %s set on %s",
				freq, utils.FormatAmount(amount, asset.Currency), asset.Name)
			return resyncAfterChange(cmd, app, output)
		},
	}
	setCmd.Flags().StringVar(&frequency, "frequency", "monthly", "weekly, biweekly or monthly")
	setCmd.Flags().Float64Var(&amount, "amount", 0, "contribution amount")
	setCmd.Flags().IntVar(&weekday, "weekday", 1, "weekday for weekly/biweekly (0=Sunday)")
	setCmd.Flags().IntVar(&day, "day", 1, "day of month for monthly (clamped to 1-28)")
	setCmd.Flags().BoolVar(&autoApply, "auto", false, "apply automatically when due")

	confirmCmd := &cobra.Command{
		Use:   "confirm <asset-id>",
		Short: "Confirm the last applied contribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			asset, err := app.Store.GetAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asset.Contribution == nil || asset.Contribution.LastAppliedID == "" {
				output.Warning("Nothing awaiting confirmation on %s", asset.Name)
				return nil
			}

			occurrenceID := asset.Contribution.LastAppliedID
			if err := app.Store.ValidateContribution(cmd.Context(), asset.ID, occurrenceID); err != nil {
				return err
			}
			output.Success("Confirmed contribution %s on %s", occurrenceID, asset.Name)
			return resyncAfterChange(cmd, app, output)
		},
	}

	offCmd := &cobra.Command{
		Use:   "off <asset-id>",
		Short: "Disable an asset's recurring contribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			asset, err := app.Store.GetAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asset.Contribution != nil {
				asset.Contribution.Enabled = false
				asset.UpdatedAt = time.Now()
				if err := app.Store.SaveAsset(cmd.Context(), asset); err != nil {
					return err
				}
			}
			output.Success("Recurring contribution disabled on %s", asset.Name)
			return resyncAfterChange(cmd, app, output)
		},
	}

	cmd.AddCommand(setCmd)
	cmd.AddCommand(confirmCmd)
	cmd.AddCommand(offCmd)
	return cmd
}

func validCategory(c models.AssetCategory) bool {
	for _, known := range models.Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func categoryNames() []string {
	names := make([]string, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		names = append(names, string(c))
	}
	return names
}

// resyncAfterChange re-derives events and the notification schedule
// after any portfolio mutation. Failures are reported but never fail the
// command that triggered them.
func resyncAfterChange(cmd *cobra.Command, app *App, output *Output) error {
	if app.Engine == nil {
		return nil
	}
	if _, err := app.Engine.Resync(cmd.Context()); err != nil {
		output.Warning("Resync failed: %v", err)
		return nil
	}
	// One-shot process: run the debounced scheduling pass before exit.
	app.Scheduler.Flush(cmd.Context())
	return nil
}
