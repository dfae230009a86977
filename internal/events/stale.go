package events

import (
	"fmt"
	"time"

	"folio/internal/models"
	"folio/internal/recurrence"
)

// GenerateStaleValuations emits a reminder for every manually valued asset
// whose valuation is about to go stale (or already has). The projected
// stale date is staleDays after the last known valuation, at 09:00.
func GenerateStaleValuations(assets []models.Asset, staleDays int, now time.Time) []models.Event {
	if staleDays < 1 {
		return nil
	}

	var out []models.Event
	for _, a := range assets {
		if !a.ManualValuation {
			continue
		}

		lastValued := a.LastValuedAt(now)
		due := recurrence.AtDueHour(lastValued.AddDate(0, 0, staleDays))
		days := recurrence.DaysUntil(now, due)
		if !withinWindow(days) {
			continue
		}

		out = append(out, models.Event{
			ID: models.PrefixStaleValuation + a.ID + "_" +
				recurrence.DateID(due),
			Type:        models.EventStaleValuation,
			Title:       fmt.Sprintf("Valuation check: %s", a.Name),
			Description: staleDescription(days, a.Name, due),
			Date:        due,
			AssetID:     a.ID,
			AssetName:   a.Name,
			Currency:    a.Currency,
			Source:      models.SourceGenerated,
		})
	}
	return out
}

func staleDescription(days int, name string, due time.Time) string {
	switch {
	case days < 0:
		return fmt.Sprintf("Valuation of %s went stale %d days ago; update its value", name, -days)
	case days == 0:
		return fmt.Sprintf("Valuation of %s goes stale today", name)
	default:
		return fmt.Sprintf("Valuation of %s goes stale on %s", name, due.Format("02 Jan 2006"))
	}
}
