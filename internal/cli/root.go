// Package cli provides the command-line interface for folio.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"folio/internal/config"
	"folio/internal/device"
	"folio/internal/engine"
	"folio/internal/errors"
	"folio/internal/logging"
	"folio/internal/notify"
	"folio/internal/scheduler"
	"folio/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-08-30"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     store.DataStore
	Scheduler *scheduler.Scheduler
	Notifier  notify.Notifier
	Engine    *engine.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(config.DefaultDBPath())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("SQLite store initialized")
	}

	if app.Store != nil {
		app.Scheduler = scheduler.New(device.NewStoreScheduler(app.Store), logger)
		app.Notifier = notify.NewMultiNotifier(cfg.Delivery, os.Stdout)
		app.Engine = engine.New(app.Store, app.Scheduler, app.Notifier, cfg, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Folio - personal portfolio tracker and reminder engine",
		Long: `Folio tracks your portfolio assets and derives a timeline of upcoming
events from them: contribution due dates, bond maturities, stale
valuations and portfolio-review nudges. Eligible events are scheduled
as local notifications and delivered by the watch loop.

Use 'folio help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/folio)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addAssetCommands(rootCmd, app)
	addEventCommands(rootCmd, app)
	addSyncCommands(rootCmd, app)
	addNotificationCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds version and config commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Folio v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			return output.JSON(app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

var errStoreUnavailable = errors.Wrap(errors.ErrDatabaseError, "data store unavailable")

// requireStore guards commands that need the data store.
func requireStore(app *App) error {
	if app.Store == nil {
		return errStoreUnavailable
	}
	return nil
}
