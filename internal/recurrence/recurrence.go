// Package recurrence computes due dates for recurring schedules.
//
// All occurrences are normalized to 09:00 local wall-clock time so that
// comparisons and occurrence ids stay stable across recomputations. The
// package does not attempt cross-timezone correctness.
package recurrence

import (
	"math"
	"time"

	"folio/internal/models"
)

// DueHour is the local hour of day every occurrence is normalized to.
const DueHour = 9

// Occurrence holds the two due dates of interest for a cadence: the most
// recent past-or-current one and the next future one.
type Occurrence struct {
	This time.Time
	Next time.Time
}

// AtDueHour returns t's calendar date at 09:00 local time.
func AtDueHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), DueHour, 0, 0, 0, t.Location())
}

// Weekly computes the occurrence pair for a weekly cadence on the given
// weekday (0=Sunday .. 6=Saturday). This period is the most recent
// occurrence of that weekday on/before today's date.
func Weekly(now time.Time, weekday time.Weekday) Occurrence {
	delta := int(now.Weekday()-weekday+7) % 7
	this := AtDueHour(now.AddDate(0, 0, -delta))
	return Occurrence{
		This: this,
		Next: this.AddDate(0, 0, 7),
	}
}

// Monthly computes the occurrence pair for a monthly cadence on the given
// day of month. The day is clamped to [1,28] to avoid short-month overflow.
func Monthly(now time.Time, dayOfMonth int) Occurrence {
	day := ClampDayOfMonth(dayOfMonth)
	this := time.Date(now.Year(), now.Month(), day, DueHour, 0, 0, 0, now.Location())
	return Occurrence{
		This: this,
		Next: this.AddDate(0, 1, 0),
	}
}

// Biweekly computes the occurrence pair for a biweekly cadence. When a prior
// applied occurrence exists the schedule chains forward from it: the next
// occurrence is exactly 14 days later at 09:00, drifting with the applied
// date rather than a fixed anchor. Without a prior occurrence it bootstraps
// from the weekly calculation.
func Biweekly(now time.Time, weekday time.Weekday, lastApplied time.Time) Occurrence {
	if !lastApplied.IsZero() {
		this := AtDueHour(lastApplied.AddDate(0, 0, 14))
		return Occurrence{
			This: this,
			Next: this.AddDate(0, 0, 14),
		}
	}
	weekly := Weekly(now, weekday)
	return Occurrence{
		This: weekly.This,
		Next: weekly.This.AddDate(0, 0, 14),
	}
}

// For computes the occurrence pair for a recurring contribution config.
// lastApplied is only consulted for biweekly chains and may be zero.
func For(now time.Time, cfg models.RecurringContribution, lastApplied time.Time) Occurrence {
	switch cfg.Frequency {
	case models.FrequencyWeekly:
		return Weekly(now, cfg.Weekday)
	case models.FrequencyBiweekly:
		return Biweekly(now, cfg.Weekday, lastApplied)
	default:
		return Monthly(now, cfg.DayOfMonth)
	}
}

// ClampDayOfMonth clamps a day-of-month to the range [1,28].
func ClampDayOfMonth(day int) int {
	if day < 1 {
		return 1
	}
	if day > 28 {
		return 28
	}
	return day
}

// IsDue reports whether due is at or before now.
func IsDue(now, due time.Time) bool {
	return !now.Before(due)
}

// DaysUntil returns the number of days from now until t, rounded up.
// A past instant yields a negative count.
func DaysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// MonthID returns the occurrence key for a monthly cadence, e.g. "2026-08".
func MonthID(t time.Time) string {
	return t.Format("2006-01")
}

// DateID returns the occurrence key for a dated cadence, e.g. "2026-08-30".
func DateID(t time.Time) string {
	return t.Format("2006-01-02")
}

// OccurrenceID derives the occurrence key for a frequency and due date.
// The applier and the contribution generator must share this derivation;
// otherwise the applied markers and the generated events drift apart.
func OccurrenceID(freq models.Frequency, due time.Time) string {
	if freq == models.FrequencyMonthly {
		return MonthID(due)
	}
	return DateID(due)
}

// ParseOccurrenceInstant turns a stored occurrence marker back into an
// instant. Date-id markers resolve to 09:00 local on that date; RFC3339
// markers are accepted for compatibility. A zero time means unparseable.
func ParseOccurrenceInstant(id string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation("2006-01-02", id, loc); err == nil {
		return AtDueHour(t)
	}
	if t, err := time.Parse(time.RFC3339, id); err == nil {
		return AtDueHour(t.In(loc))
	}
	return time.Time{}
}
