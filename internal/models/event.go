package models

import (
	"strings"
	"time"
)

// EventType represents the type of a portfolio event.
type EventType string

const (
	EventMaturity             EventType = "maturity"
	EventDividend             EventType = "dividend"
	EventPriceAlert           EventType = "price_alert"
	EventContributionReminder EventType = "contribution_reminder"
	EventRebalance            EventType = "rebalance"
	EventStaleValuation       EventType = "stale_valuation"
)

// EventSource distinguishes generated events from user-authored ones.
type EventSource string

const (
	SourceGenerated EventSource = "generated"
	SourceUser      EventSource = "user"
)

// Generated-event id prefixes. The prefix both namespaces ids across
// generators and marks an event as replaceable during a sync.
const (
	PrefixMaturity       = "maturity_"
	PrefixAssetContrib   = "assetcontrib_"
	PrefixStaleValuation = "stalevaluation_"
	PrefixContribRoom    = "contrib_"
	PrefixRebalance      = "rebalance_"
)

// GeneratedPrefixes lists all id prefixes owned by the generators.
func GeneratedPrefixes() []string {
	return []string{
		PrefixMaturity, PrefixAssetContrib, PrefixStaleValuation,
		PrefixContribRoom, PrefixRebalance,
	}
}

// IsGeneratedID reports whether id belongs to the generated id space.
func IsGeneratedID(id string) bool {
	for _, p := range GeneratedPrefixes() {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// Event represents one entry in the portfolio timeline: a maturity, a
// contribution reminder, a stale-valuation nudge, and so on.
//
// Generated events carry deterministic ids so that recomputation from the
// same state always produces the same id for the same logical occurrence.
// Generators leave IsRead and CreatedAt zero; the store owns both.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	AssetID     string      `json:"asset_id,omitempty"`
	AssetName   string      `json:"asset_name,omitempty"`
	Amount      float64     `json:"amount,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	Source      EventSource `json:"source"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
}
