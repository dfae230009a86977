// Package config provides configuration management for the portfolio application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"folio/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Notifications models.NotificationPreferences `mapstructure:"notifications"`
	Accounts      AccountsConfig                 `mapstructure:"accounts"`
	Delivery      DeliveryConfig                 `mapstructure:"delivery"`
	Logging       LoggingConfig                  `mapstructure:"logging"`
	UI            UIConfig                       `mapstructure:"ui"`
}

// AccountsConfig holds tax-advantaged account settings used by the
// contribution-room generator.
type AccountsConfig struct {
	PayFrequency models.Frequency          `mapstructure:"pay_frequency"`
	PayWeekday   int                       `mapstructure:"pay_weekday"`
	PayDay       int                       `mapstructure:"pay_day"` // day of month
	Rooms        []models.ContributionRoom `mapstructure:"rooms"`
}

// DeliveryConfig holds delivery-channel settings for fired notifications.
type DeliveryConfig struct {
	Terminal TerminalConfig `mapstructure:"terminal"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TerminalConfig holds terminal delivery configuration.
type TerminalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// WebhookConfig holds webhook delivery configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram delivery configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	Currency     string `mapstructure:"currency"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/folio"
	}
	return filepath.Join(home, ".config", "folio")
}

// DefaultDBPath returns the default SQLite database path.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "folio.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// First run: write a template, then fall back to defaults.
			if werr := createTemplateConfig(configDir); werr != nil {
				return werr
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

// SaveNotificationPreferences writes updated notification preferences
// back to config.toml, preserving the rest of the file.
func SaveNotificationPreferences(configDir string, prefs models.NotificationPreferences) error {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if werr := createTemplateConfig(configDir); werr != nil {
			return werr
		}
		v.SetConfigFile(filepath.Join(configDir, "config.toml"))
	}

	v.Set("notifications.enabled", prefs.Enabled)
	v.Set("notifications.maturity_alerts", prefs.MaturityAlerts)
	v.Set("notifications.maturity_days_before", prefs.MaturityDaysBefore)
	v.Set("notifications.price_alerts", prefs.PriceAlerts)
	v.Set("notifications.dividend_alerts", prefs.DividendAlerts)
	v.Set("notifications.contribution_reminders", prefs.ContributionReminders)
	v.Set("notifications.stale_valuation_reminders", prefs.StaleValuationReminders)
	v.Set("notifications.stale_valuation_days", prefs.StaleValuationDays)

	return v.WriteConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.maturity_alerts", true)
	v.SetDefault("notifications.maturity_days_before", 7)
	v.SetDefault("notifications.price_alerts", true)
	v.SetDefault("notifications.dividend_alerts", true)
	v.SetDefault("notifications.contribution_reminders", true)
	v.SetDefault("notifications.stale_valuation_reminders", true)
	v.SetDefault("notifications.stale_valuation_days", 30)
	v.SetDefault("accounts.pay_frequency", "monthly")
	v.SetDefault("accounts.pay_weekday", 5)
	v.SetDefault("accounts.pay_day", 1)
	v.SetDefault("delivery.terminal.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.currency", "USD")
}

func applyDefaults(cfg *Config) {
	if cfg.Accounts.PayFrequency == "" {
		cfg.Accounts.PayFrequency = models.FrequencyMonthly
	}
	if cfg.UI.DateFormat == "" {
		cfg.UI.DateFormat = "02-Jan-2006"
	}
	if cfg.UI.Currency == "" {
		cfg.UI.Currency = "USD"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FOLIO_TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Delivery.Telegram.BotToken = v
	}
	if v := os.Getenv("FOLIO_TELEGRAM_CHAT_ID"); v != "" {
		cfg.Delivery.Telegram.ChatID = v
	}
	if v := os.Getenv("FOLIO_WEBHOOK_URL"); v != "" {
		cfg.Delivery.Webhook.URL = v
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Notifications.MaturityDaysBefore < 0 || c.Notifications.MaturityDaysBefore > 90 {
		return fmt.Errorf("maturity_days_before must be between 0 and 90")
	}
	if c.Notifications.StaleValuationDays < 1 {
		return fmt.Errorf("stale_valuation_days must be at least 1")
	}
	if !c.Accounts.PayFrequency.Valid() {
		return fmt.Errorf("invalid pay_frequency: %s (must be weekly, biweekly or monthly)", c.Accounts.PayFrequency)
	}
	if c.Accounts.PayWeekday < 0 || c.Accounts.PayWeekday > 6 {
		return fmt.Errorf("pay_weekday must be between 0 and 6")
	}
	if c.Accounts.PayDay < 1 || c.Accounts.PayDay > 28 {
		return fmt.Errorf("pay_day must be between 1 and 28")
	}
	for _, room := range c.Accounts.Rooms {
		if room.AccountType == "" {
			return fmt.Errorf("account room entries require an account_type")
		}
		if room.PerPeriodTarget < 0 {
			return fmt.Errorf("per_period_target must be non-negative for %s", room.AccountType)
		}
	}
	return nil
}
