package models

// NotificationPreferences holds the per-type opt-in flags consulted by the
// notification scheduler. The zero value disables everything.
type NotificationPreferences struct {
	Enabled                 bool `json:"enabled" mapstructure:"enabled"`
	MaturityAlerts          bool `json:"maturity_alerts" mapstructure:"maturity_alerts"`
	MaturityDaysBefore      int  `json:"maturity_days_before" mapstructure:"maturity_days_before"`
	PriceAlerts             bool `json:"price_alerts" mapstructure:"price_alerts"`
	DividendAlerts          bool `json:"dividend_alerts" mapstructure:"dividend_alerts"`
	ContributionReminders   bool `json:"contribution_reminders" mapstructure:"contribution_reminders"`
	StaleValuationReminders bool `json:"stale_valuation_reminders" mapstructure:"stale_valuation_reminders"`
	StaleValuationDays      int  `json:"stale_valuation_days" mapstructure:"stale_valuation_days"`
}

// DefaultNotificationPreferences returns the preferences applied before the
// user has touched any setting.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Enabled:                 true,
		MaturityAlerts:          true,
		MaturityDaysBefore:      7,
		PriceAlerts:             true,
		DividendAlerts:          true,
		ContributionReminders:   true,
		StaleValuationReminders: true,
		StaleValuationDays:      30,
	}
}

// AllowsType reports whether notifications for the given event type are
// opted in. The global Enabled switch is checked separately.
func (p NotificationPreferences) AllowsType(t EventType) bool {
	switch t {
	case EventMaturity:
		return p.MaturityAlerts
	case EventPriceAlert:
		return p.PriceAlerts
	case EventDividend:
		return p.DividendAlerts
	case EventContributionReminder:
		return p.ContributionReminders
	case EventStaleValuation:
		return p.StaleValuationReminders
	case EventRebalance:
		// Review nudges ride on the contribution-reminder switch.
		return p.ContributionReminders
	}
	return false
}
