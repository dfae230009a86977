package events

import (
	"strings"
	"time"

	"folio/internal/models"
	"folio/internal/recurrence"
)

// Rebalance review trigger threshold on the overall risk score.
const reviewScoreThreshold = 7

// GenerateRebalance emits at most one portfolio review nudge. It fires only
// for a non-empty portfolio that either carries risk suggestions or scores
// at or above the threshold. The review date is tomorrow at 09:00 advanced
// by 14 days, and the month of that date caps the nudge to one per calendar
// month.
func GenerateRebalance(assets []models.Asset, risk models.RiskSummary, now time.Time) []models.Event {
	if len(assets) == 0 {
		return nil
	}

	suggestion := firstSuggestion(risk.Suggestions)
	if suggestion == "" && risk.OverallScore < reviewScoreThreshold {
		return nil
	}

	description := suggestion
	if description == "" {
		description = "Your portfolio risk is elevated; review your allocation"
	}

	review := recurrence.AtDueHour(now.AddDate(0, 0, 1)).AddDate(0, 0, 14)

	return []models.Event{{
		ID:          models.PrefixRebalance + recurrence.MonthID(review),
		Type:        models.EventRebalance,
		Title:       "Portfolio review",
		Description: description,
		Date:        review,
		Source:      models.SourceGenerated,
	}}
}

// firstSuggestion returns the first non-empty suggestion with its
// whitespace collapsed, or "".
func firstSuggestion(suggestions []string) string {
	for _, s := range suggestions {
		collapsed := strings.Join(strings.Fields(s), " ")
		if collapsed != "" {
			return collapsed
		}
	}
	return ""
}
