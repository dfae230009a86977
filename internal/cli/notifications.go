package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/config"
	"folio/internal/notify"
)

// addNotificationCommands adds the notification command group.
func addNotificationCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Inspect and configure notifications",
	}

	cmd.AddCommand(newNotificationsShowCmd(app))
	cmd.AddCommand(newNotificationsSetCmd(app))
	cmd.AddCommand(newNotificationsTestCmd(app))

	rootCmd.AddCommand(cmd)
}

func newNotificationsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show preferences and the pending schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			pending, err := app.Store.ListPending(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"preferences": app.Config.Notifications,
					"pending":     pending,
				})
			}

			prefs := app.Config.Notifications
			output.Header("Preferences")
			output.Printf("  enabled: %t\n", prefs.Enabled)
			output.Printf("  maturity alerts: %t (%d days heads-up)\n", prefs.MaturityAlerts, prefs.MaturityDaysBefore)
			output.Printf("  contribution reminders: %t\n", prefs.ContributionReminders)
			output.Printf("  stale valuation reminders: %t (after %d days)\n", prefs.StaleValuationReminders, prefs.StaleValuationDays)
			output.Printf("  dividend alerts: %t\n", prefs.DividendAlerts)
			output.Printf("  price alerts: %t\n", prefs.PriceAlerts)

			output.Println()
			output.Header("Scheduled")
			if len(pending) == 0 {
				output.Dim("  nothing scheduled")
				return nil
			}
			for _, n := range pending {
				output.Printf("  %s  %s\n", n.Trigger.Format("02 Jan 2006 15:04"), n.Title)
			}
			return nil
		},
	}
}

func newNotificationsSetCmd(app *App) *cobra.Command {
	var (
		enabled       string
		maturity      string
		contributions string
		stale         string
		dividends     string
		prices        string
		headsUpDays   int
		staleDays     int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update notification preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			prefs := &app.Config.Notifications

			applyToggle(&prefs.Enabled, enabled)
			applyToggle(&prefs.MaturityAlerts, maturity)
			applyToggle(&prefs.ContributionReminders, contributions)
			applyToggle(&prefs.StaleValuationReminders, stale)
			applyToggle(&prefs.DividendAlerts, dividends)
			applyToggle(&prefs.PriceAlerts, prices)
			if cmd.Flags().Changed("heads-up-days") {
				prefs.MaturityDaysBefore = headsUpDays
			}
			if cmd.Flags().Changed("stale-days") {
				prefs.StaleValuationDays = staleDays
			}

			if err := app.Config.Validate(); err != nil {
				return err
			}

			configDir, _ := cmd.Flags().GetString("config")
			if err := config.SaveNotificationPreferences(configDir, *prefs); err != nil {
				return err
			}

			output.Success("Preferences saved")
			return resyncAfterChange(cmd, app, output)
		},
	}

	cmd.Flags().StringVar(&enabled, "enabled", "", "master switch (on/off)")
	cmd.Flags().StringVar(&maturity, "maturity", "", "maturity alerts (on/off)")
	cmd.Flags().StringVar(&contributions, "contributions", "", "contribution reminders (on/off)")
	cmd.Flags().StringVar(&stale, "stale", "", "stale valuation reminders (on/off)")
	cmd.Flags().StringVar(&dividends, "dividends", "", "dividend alerts (on/off)")
	cmd.Flags().StringVar(&prices, "prices", "", "price alerts (on/off)")
	cmd.Flags().IntVar(&headsUpDays, "heads-up-days", 7, "days of maturity heads-up (0-90)")
	cmd.Flags().IntVar(&staleDays, "stale-days", 30, "days before a manual valuation is stale")
	return cmd
}

func applyToggle(field *bool, value string) {
	switch value {
	case "on", "true", "yes":
		*field = true
	case "off", "false", "no":
		*field = false
	}
}

func newNotificationsTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification through the delivery channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Notifier == nil {
				output.Warning("No delivery channels configured")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			err := app.Notifier.Send(ctx, notify.Notification{
				Title:     "Folio test notification",
				Body:      "Delivery channels are working.",
				Timestamp: time.Now(),
			})
			if err != nil {
				output.Error("Delivery failed: %v", err)
				return err
			}
			output.Success("Test notification delivered")
			return nil
		},
	}
}
