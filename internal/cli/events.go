package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"folio/internal/models"
	"folio/internal/store"
	"folio/pkg/utils"
)

// addEventCommands adds the event timeline command group.
func addEventCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Browse and manage the event timeline",
	}

	cmd.AddCommand(newEventsListCmd(app))
	cmd.AddCommand(newEventsReadCmd(app))
	cmd.AddCommand(newEventsAddCmd(app))
	cmd.AddCommand(newEventsRemoveCmd(app))
	cmd.AddCommand(newEventsExportCmd(app))

	rootCmd.AddCommand(cmd)
}

func newEventsListCmd(app *App) *cobra.Command {
	var (
		eventType string
		assetID   string
		unread    bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List timeline events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			events, err := app.Store.GetEvents(cmd.Context(), store.EventFilter{
				Type:    models.EventType(eventType),
				AssetID: assetID,
				Unread:  unread,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(events)
			}

			if len(events) == 0 {
				output.Dim("No events. Run 'folio sync' to regenerate the timeline.")
				return nil
			}

			output.Header("Timeline")
			for _, e := range events {
				marker := " "
				if !e.IsRead {
					marker = output.ColoredString(ColorCyan, "●")
				}
				line := fmt.Sprintf("%s %s  %-22s  %s",
					marker, e.Date.Format("02 Jan 2006"), e.Type, e.Title)
				if e.Amount != 0 {
					line += "  " + utils.FormatAmount(e.Amount, e.Currency)
				}
				output.Println(line)
				if e.Description != "" {
					output.Dim("    %s", e.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "filter by event type")
	cmd.Flags().StringVar(&assetID, "asset", "", "filter by asset id")
	cmd.Flags().BoolVar(&unread, "unread", false, "unread events only")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events")
	return cmd
}

func newEventsReadCmd(app *App) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "read <event-id>...",
		Short: "Mark events as read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			for _, id := range args {
				if err := app.Store.MarkEventRead(cmd.Context(), id, !unread); err != nil {
					return err
				}
			}
			output.Success("Marked %d event(s)", len(args))

			// Read state feeds the notification filter.
			return resyncAfterChange(cmd, app, output)
		},
	}

	cmd.Flags().BoolVar(&unread, "undo", false, "mark as unread instead")
	return cmd
}

func newEventsAddCmd(app *App) *cobra.Command {
	var (
		eventType   string
		date        string
		description string
		amount      float64
		currency    string
		assetID     string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a manual event to the timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			when, err := time.ParseInLocation("2006-01-02", date, time.Local)
			if err != nil {
				return fmt.Errorf("parsing date: %w", err)
			}

			now := time.Now()
			event := &models.Event{
				ID:          "user_" + uuid.NewString(),
				Type:        models.EventType(eventType),
				Title:       args[0],
				Description: description,
				Date:        when,
				AssetID:     assetID,
				Amount:      amount,
				Currency:    strings.ToUpper(currency),
				Source:      models.SourceUser,
				CreatedAt:   now,
			}

			if err := app.Store.SaveEvent(cmd.Context(), event); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(event)
			}
			output.Success("Added event %s", event.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "type", string(models.EventDividend), "event type")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "event description")
	cmd.Flags().Float64Var(&amount, "amount", 0, "associated amount")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	cmd.Flags().StringVar(&assetID, "asset", "", "related asset id")
	return cmd
}

func newEventsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <event-id>",
		Short: "Remove a manual event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			if models.IsGeneratedID(args[0]) {
				return fmt.Errorf("event %s is generated; it will reappear on the next sync (mark it read instead)", args[0])
			}

			if err := app.Store.DeleteEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.Success("Removed event %s", args[0])
			return nil
		},
	}
}

// eventExportRow is the CSV shape for exported events.
type eventExportRow struct {
	ID          string  `csv:"id"`
	Type        string  `csv:"type"`
	Title       string  `csv:"title"`
	Description string  `csv:"description"`
	Date        string  `csv:"date"`
	AssetID     string  `csv:"asset_id"`
	AssetName   string  `csv:"asset_name"`
	Amount      float64 `csv:"amount"`
	Currency    string  `csv:"currency"`
	Source      string  `csv:"source"`
	IsRead      bool    `csv:"is_read"`
}

func newEventsExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timeline to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			events, err := app.Store.GetEvents(cmd.Context(), store.EventFilter{})
			if err != nil {
				return err
			}

			rows := make([]*eventExportRow, 0, len(events))
			for _, e := range events {
				rows = append(rows, &eventExportRow{
					ID:          e.ID,
					Type:        string(e.Type),
					Title:       e.Title,
					Description: e.Description,
					Date:        e.Date.Format(time.RFC3339),
					AssetID:     e.AssetID,
					AssetName:   e.AssetName,
					Amount:      e.Amount,
					Currency:    e.Currency,
					Source:      string(e.Source),
					IsRead:      e.IsRead,
				})
			}

			if outPath == "-" {
				return gocsv.Marshal(rows, cmd.OutOrStdout())
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()

			if err := gocsv.Marshal(rows, f); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			output.Success("Exported %d events to %s", len(rows), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "events.csv", "output file ('-' for stdout)")
	return cmd
}
