package events

import (
	"fmt"
	"time"

	"folio/internal/models"
	"folio/internal/recurrence"
)

// GenerateMaturities emits one event per asset with a maturity date whose
// distance from now falls inside the candidate window. Maturity does not
// repeat, so the id is stable per asset.
func GenerateMaturities(assets []models.Asset, now time.Time) []models.Event {
	var out []models.Event
	for _, a := range assets {
		if a.MaturityDate == nil || a.MaturityDate.IsZero() {
			continue
		}
		due := *a.MaturityDate
		days := recurrence.DaysUntil(now, due)
		if !withinWindow(days) {
			continue
		}

		out = append(out, models.Event{
			ID:          models.PrefixMaturity + a.ID,
			Type:        models.EventMaturity,
			Title:       fmt.Sprintf("Maturity: %s", a.Name),
			Description: maturityDescription(days, due),
			Date:        due,
			AssetID:     a.ID,
			AssetName:   a.Name,
			Amount:      a.Value,
			Currency:    a.Currency,
			Source:      models.SourceGenerated,
		})
	}
	return out
}

// maturityDescription varies the text by proximity.
func maturityDescription(days int, due time.Time) string {
	switch {
	case days < 0:
		if days == -1 {
			return "Matured yesterday"
		}
		return fmt.Sprintf("Matured %d days ago", -days)
	case days == 0:
		return "Matures today"
	case days == 1:
		return "Matures tomorrow"
	case days <= 7:
		return fmt.Sprintf("Matures in %d days", days)
	default:
		return fmt.Sprintf("Matures on %s", due.Format("02 Jan 2006"))
	}
}
