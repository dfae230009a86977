package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/logging"
	"folio/internal/models"
	"folio/internal/recurrence"
)

// ContributionApplier mutates an asset for one applied contribution
// occurrence: it adds the amount to the recorded value, appends a value
// history point and stamps the occurrence id as last applied.
type ContributionApplier interface {
	ApplyContribution(ctx context.Context, assetID, occurrenceID string, amount float64, appliedAt time.Time) error
}

// Applier runs the auto-apply pass. It shares the occurrence-id derivation
// with GenerateContributions; if the two drift apart, the needs-confirmation
// state shown to the user stops matching what was actually applied.
type Applier struct {
	store  ContributionApplier
	logger zerolog.Logger
}

// NewApplier creates a new Applier.
func NewApplier(store ContributionApplier, logger zerolog.Logger) *Applier {
	return &Applier{store: store, logger: logger}
}

// Run applies every due, not-yet-applied contribution occurrence on assets
// with auto-apply enabled. Failures are logged and skipped; the pass never
// aborts. Returns the number of contributions applied.
func (ap *Applier) Run(ctx context.Context, assets []models.Asset, now time.Time) int {
	applied := 0
	for _, a := range assets {
		cfg := a.Contribution
		if cfg == nil || !cfg.Enabled || !cfg.AutoApply || cfg.Amount <= 0 || !cfg.Frequency.Valid() {
			continue
		}

		lastApplied := recurrence.ParseOccurrenceInstant(cfg.LastAppliedID, now.Location())
		occ := recurrence.For(now, *cfg, lastApplied)
		currentID := recurrence.OccurrenceID(cfg.Frequency, occ.This)

		status := StatusFor(now, occ.This, currentID, *cfg)
		if !CanTransition(status, StatusApplied) {
			continue
		}

		if err := ap.store.ApplyContribution(ctx, a.ID, currentID, cfg.Amount, now); err != nil {
			ap.logger.Warn().Err(err).
				Str("asset_id", a.ID).
				Str("occurrence_id", currentID).
				Msg("Auto-apply failed")
			continue
		}

		logging.LogContributionApplied(ap.logger, a.ID, currentID, cfg.Amount)
		applied++
	}
	return applied
}
