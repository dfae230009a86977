package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/models"
	"folio/internal/recurrence"
)

type appliedCall struct {
	assetID      string
	occurrenceID string
	amount       float64
}

type fakeApplierStore struct {
	calls []appliedCall
	fail  bool
}

func (f *fakeApplierStore) ApplyContribution(_ context.Context, assetID, occurrenceID string, amount float64, _ time.Time) error {
	if f.fail {
		return assert.AnError
	}
	f.calls = append(f.calls, appliedCall{assetID, occurrenceID, amount})
	return nil
}

func autoApplyAsset(id string) models.Asset {
	return models.Asset{
		ID:       id,
		Name:     id,
		Currency: "USD",
		Contribution: &models.RecurringContribution{
			Enabled:    true,
			AutoApply:  true,
			Frequency:  models.FrequencyMonthly,
			DayOfMonth: 15,
			Amount:     100,
		},
	}
}

func TestApplierAppliesDueOccurrences(t *testing.T) {
	store := &fakeApplierStore{}
	ap := NewApplier(store, zerolog.Nop())

	applied := ap.Run(context.Background(), []models.Asset{autoApplyAsset("a1")}, testNow)

	assert.Equal(t, 1, applied)
	require.Len(t, store.calls, 1)
	assert.Equal(t, "a1", store.calls[0].assetID)
	assert.Equal(t, recurrence.MonthID(testNow), store.calls[0].occurrenceID)
	assert.Equal(t, 100.0, store.calls[0].amount)
}

func TestApplierSkipsAlreadyApplied(t *testing.T) {
	store := &fakeApplierStore{}
	ap := NewApplier(store, zerolog.Nop())

	asset := autoApplyAsset("a1")
	asset.Contribution.LastAppliedID = recurrence.MonthID(testNow)

	applied := ap.Run(context.Background(), []models.Asset{asset}, testNow)
	assert.Zero(t, applied)
	assert.Empty(t, store.calls)
}

func TestApplierSkipsValidatedAndPending(t *testing.T) {
	store := &fakeApplierStore{}
	ap := NewApplier(store, zerolog.Nop())

	validated := autoApplyAsset("v1")
	validated.Contribution.LastValidatedID = recurrence.MonthID(testNow)

	pending := autoApplyAsset("p1")
	pending.Contribution.DayOfMonth = 28 // not due yet on Aug 26

	applied := ap.Run(context.Background(), []models.Asset{validated, pending}, testNow)
	assert.Zero(t, applied)
}

func TestApplierToleratesStoreFailure(t *testing.T) {
	store := &fakeApplierStore{fail: true}
	ap := NewApplier(store, zerolog.Nop())

	applied := ap.Run(context.Background(), []models.Asset{autoApplyAsset("a1"), autoApplyAsset("a2")}, testNow)
	assert.Zero(t, applied)
}

func TestApplierAndGeneratorShareOccurrenceIDs(t *testing.T) {
	// The generator must report the exact occurrence id the applier stamps,
	// otherwise the confirm-pending state never lines up.
	store := &fakeApplierStore{}
	ap := NewApplier(store, zerolog.Nop())

	asset := autoApplyAsset("a1")
	ap.Run(context.Background(), []models.Asset{asset}, testNow)
	require.Len(t, store.calls, 1)

	asset.Contribution.LastAppliedID = store.calls[0].occurrenceID
	events := GenerateContributions([]models.Asset{asset}, testNow)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Title, "Confirm contribution")
	assert.Contains(t, events[0].ID, store.calls[0].occurrenceID)
}
