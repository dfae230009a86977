package events

import (
	"time"

	"folio/internal/models"
)

// Candidate-window bounds in days relative to now. Events whose due date
// falls outside this range are not worth surfacing.
const (
	WindowMinDays = -30
	WindowMaxDays = 365
)

// State is the portfolio snapshot the generators read. Generators never
// mutate it.
type State struct {
	Assets       []models.Asset
	Prefs        models.NotificationPreferences
	Rooms        []models.ContributionRoom
	PayFrequency models.Frequency
	PayWeekday   time.Weekday
	PayDay       int
	Risk         models.RiskSummary
}

// withinWindow reports whether a days-until count falls inside the
// candidate window.
func withinWindow(days int) bool {
	return days >= WindowMinDays && days <= WindowMaxDays
}

// Generate runs all generators against the state and concatenates their
// candidates. Id prefixes keep the per-generator id spaces disjoint, so no
// cross-generator dedupe is needed.
func Generate(state State, now time.Time) []models.Event {
	var out []models.Event
	out = append(out, GenerateMaturities(state.Assets, now)...)
	out = append(out, GenerateContributions(state.Assets, now)...)
	out = append(out, GenerateStaleValuations(state.Assets, state.Prefs.StaleValuationDays, now)...)
	out = append(out, GenerateContributionRoom(state.Rooms, state.PayFrequency, state.PayWeekday, state.PayDay, now)...)
	out = append(out, GenerateRebalance(state.Assets, state.Risk, now)...)
	return out
}
