package events

import (
	"fmt"
	"time"

	"folio/internal/models"
	"folio/internal/recurrence"
	"folio/pkg/utils"
)

// GenerateContributions emits at most one event per asset with an enabled
// recurring contribution. While the current occurrence is due and
// unvalidated it is the one shown (as needs-confirmation if auto-applied,
// otherwise as due-now); once validated the asset emits nothing until a new
// occurrence starts. An occurrence that is not yet due is announced via the
// next-period date as future-planned.
func GenerateContributions(assets []models.Asset, now time.Time) []models.Event {
	var out []models.Event
	for _, a := range assets {
		cfg := a.Contribution
		if cfg == nil || !cfg.Enabled || cfg.Amount <= 0 || !cfg.Frequency.Valid() {
			continue
		}

		lastApplied := recurrence.ParseOccurrenceInstant(cfg.LastAppliedID, now.Location())
		occ := recurrence.For(now, *cfg, lastApplied)
		currentID := recurrence.OccurrenceID(cfg.Frequency, occ.This)
		status := StatusFor(now, occ.This, currentID, *cfg)

		if status == StatusValidated {
			continue
		}

		due := occ.This
		occurrenceID := currentID
		if status == StatusPending {
			due = occ.Next
			occurrenceID = recurrence.OccurrenceID(cfg.Frequency, due)
		}

		amountStr := utils.FormatAmount(cfg.Amount, a.Currency)
		var title, description string
		switch status {
		case StatusApplied:
			title = fmt.Sprintf("Confirm contribution: %s", a.Name)
			description = fmt.Sprintf("%s was auto-applied to %s and awaits your confirmation", amountStr, a.Name)
		case StatusDue:
			title = fmt.Sprintf("Contribution due: %s", a.Name)
			description = fmt.Sprintf("%s contribution to %s is due", amountStr, a.Name)
		default:
			title = fmt.Sprintf("Upcoming contribution: %s", a.Name)
			description = fmt.Sprintf("%s contribution to %s planned for %s", amountStr, a.Name, due.Format("02 Jan 2006"))
		}

		out = append(out, models.Event{
			ID: models.PrefixAssetContrib + a.ID + "_" +
				string(cfg.Frequency) + "_" + occurrenceID,
			Type:        models.EventContributionReminder,
			Title:       title,
			Description: description,
			Date:        due,
			AssetID:     a.ID,
			AssetName:   a.Name,
			Amount:      cfg.Amount,
			Currency:    a.Currency,
			Source:      models.SourceGenerated,
		})
	}
	return out
}
