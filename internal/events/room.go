package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"folio/internal/models"
	"folio/internal/recurrence"
	"folio/pkg/utils"
)

// GenerateContributionRoom emits one event per enabled tax-advantaged
// account type with a positive per-period savings target, dated at the next
// due date of the global pay cadence. Amounts are rounded to whole currency
// units.
func GenerateContributionRoom(rooms []models.ContributionRoom, payFreq models.Frequency, payWeekday time.Weekday, payDay int, now time.Time) []models.Event {
	if !payFreq.Valid() {
		return nil
	}

	due := nextPayDate(now, payFreq, payWeekday, payDay)

	var out []models.Event
	for _, room := range rooms {
		if !room.Enabled || room.PerPeriodTarget <= 0 {
			continue
		}

		amount := decimal.NewFromFloat(room.PerPeriodTarget).Round(0)
		amountF, _ := amount.Float64()
		label := strings.ToUpper(room.AccountType)

		out = append(out, models.Event{
			ID: models.PrefixContribRoom + room.AccountType + "_" +
				recurrence.DateID(due),
			Type:  models.EventContributionReminder,
			Title: fmt.Sprintf("Contribution room: %s", label),
			Description: fmt.Sprintf("Set aside %s for your %s this period",
				utils.FormatAmount(amountF, room.Currency), label),
			Date:     due,
			Amount:   amountF,
			Currency: room.Currency,
			Source:   models.SourceGenerated,
		})
	}
	return out
}

// nextPayDate returns the next future occurrence of the global pay cadence.
func nextPayDate(now time.Time, freq models.Frequency, weekday time.Weekday, day int) time.Time {
	var occ recurrence.Occurrence
	switch freq {
	case models.FrequencyWeekly:
		occ = recurrence.Weekly(now, weekday)
	case models.FrequencyBiweekly:
		occ = recurrence.Biweekly(now, weekday, time.Time{})
	default:
		occ = recurrence.Monthly(now, day)
	}
	if occ.This.After(now) {
		return occ.This
	}
	return occ.Next
}
