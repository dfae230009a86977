// Package events derives typed portfolio events (maturities, contribution
// reminders, stale valuations, review nudges) from portfolio state.
//
// Every generator is a pure function of (state, now). Generated events carry
// deterministic ids so that recomputing from identical state always yields
// an identical candidate list; the store relies on this for merge/dedupe.
package events

import (
	"time"

	"folio/internal/models"
	"folio/internal/recurrence"
)

// OccurrenceStatus is the lifecycle state of one recurring-contribution
// occurrence, keyed by its occurrence id.
type OccurrenceStatus string

const (
	// StatusPending means the occurrence's due date is still in the future.
	StatusPending OccurrenceStatus = "pending"
	// StatusDue means the due date has passed and nothing has been applied.
	StatusDue OccurrenceStatus = "due"
	// StatusApplied means the contribution was mechanically applied and is
	// awaiting user confirmation.
	StatusApplied OccurrenceStatus = "applied_pending_validation"
	// StatusValidated means the user has confirmed the occurrence.
	StatusValidated OccurrenceStatus = "validated"
)

// StatusFor resolves the status of the occurrence identified by occurrenceID,
// given the due date and the asset's applied/validated markers.
func StatusFor(now, due time.Time, occurrenceID string, cfg models.RecurringContribution) OccurrenceStatus {
	if cfg.LastValidatedID == occurrenceID {
		return StatusValidated
	}
	if cfg.LastAppliedID == occurrenceID {
		return StatusApplied
	}
	if recurrence.IsDue(now, due) {
		return StatusDue
	}
	return StatusPending
}

// CanTransition reports whether moving an occurrence from one status to
// another is a legal lifecycle step. Pending advances to Due by time alone;
// Due may be auto-applied or validated directly; Applied must be validated.
func CanTransition(from, to OccurrenceStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusDue
	case StatusDue:
		return to == StatusApplied || to == StatusValidated
	case StatusApplied:
		return to == StatusValidated
	}
	return false
}
