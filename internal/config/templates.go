package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Folio Configuration

[notifications]
# Global switch for local notifications
enabled = true
# Heads-up reminder for maturing assets
maturity_alerts = true
# Days before maturity to send the heads-up
maturity_days_before = 7
# Price alert notifications
price_alerts = true
# Dividend notifications
dividend_alerts = true
# Recurring contribution reminders
contribution_reminders = true
# Reminders for manually valued assets with stale prices
stale_valuation_reminders = true
# Days after the last valuation before an asset counts as stale
stale_valuation_days = 30

[accounts]
# Cadence of contribution-room reminders: weekly, biweekly, monthly
pay_frequency = "monthly"
# Weekday for weekly/biweekly cadence (0=Sunday .. 6=Saturday)
pay_weekday = 5
# Day of month for monthly cadence (1-28)
pay_day = 1

# Per-account savings targets, one block per account type:
# [[accounts.rooms]]
# account_type = "tfsa"
# enabled = true
# per_period_target = 500.0
# currency = "USD"

[delivery.terminal]
enabled = true

[delivery.webhook]
enabled = false
url = ""

[delivery.telegram]
enabled = false
bot_token = ""
chat_id = ""

[logging]
level = "info"
console = true
file = true

[ui]
color_enabled = true
date_format = "02-Jan-2006"
currency = "USD"
`

// createTemplateConfig writes a starter config.toml to the config directory.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
