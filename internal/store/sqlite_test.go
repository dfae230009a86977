package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/errors"
	"folio/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := "test_" + t.Name() + ".db"
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	})
	return store
}

func testAsset(id string) *models.Asset {
	now := time.Now().Truncate(time.Second)
	maturity := now.AddDate(1, 0, 0)
	return &models.Asset{
		ID:           id,
		Name:         "Acme Bond",
		Category:     models.CategoryBond,
		Currency:     "USD",
		Value:        10000,
		MaturityDate: &maturity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAssetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	asset := testAsset("bond-1")
	asset.Contribution = &models.RecurringContribution{
		Enabled:    true,
		Frequency:  models.FrequencyMonthly,
		DayOfMonth: 15,
		Amount:     500,
	}
	require.NoError(t, s.SaveAsset(ctx, asset))

	got, err := s.GetAsset(ctx, "bond-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Bond", got.Name)
	assert.Equal(t, models.CategoryBond, got.Category)
	require.NotNil(t, got.MaturityDate)
	require.NotNil(t, got.Contribution)
	assert.Equal(t, models.FrequencyMonthly, got.Contribution.Frequency)
	assert.Equal(t, 15, got.Contribution.DayOfMonth)

	_, err = s.GetAsset(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrAssetNotFound)
}

func TestListAssetsFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bond := testAsset("bond-1")
	require.NoError(t, s.SaveAsset(ctx, bond))

	fund := testAsset("fund-1")
	fund.Name = "Index Fund"
	fund.Category = models.CategoryFund
	require.NoError(t, s.SaveAsset(ctx, fund))

	all, err := s.ListAssets(ctx, AssetFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bonds, err := s.ListAssets(ctx, AssetFilter{Category: models.CategoryBond})
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, "bond-1", bonds[0].ID)

	byName, err := s.ListAssets(ctx, AssetFilter{Name: "index"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "fund-1", byName[0].ID)
}

func TestApplyContribution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	asset := testAsset("fund-1")
	asset.Value = 1000
	asset.Contribution = &models.RecurringContribution{
		Enabled:   true,
		Frequency: models.FrequencyMonthly,
		Amount:    250.50,
	}
	require.NoError(t, s.SaveAsset(ctx, asset))

	require.NoError(t, s.ApplyContribution(ctx, "fund-1", "2026-08", 250.50, now))

	got, err := s.GetAsset(ctx, "fund-1")
	require.NoError(t, err)
	assert.Equal(t, 1250.50, got.Value)
	assert.Equal(t, "2026-08", got.Contribution.LastAppliedID)
	require.Len(t, got.ValueHistory, 1)
	assert.Equal(t, 1250.50, got.ValueHistory[0].Value)

	// Same occurrence twice must not double-apply.
	require.NoError(t, s.ApplyContribution(ctx, "fund-1", "2026-08", 250.50, now))
	got, err = s.GetAsset(ctx, "fund-1")
	require.NoError(t, err)
	assert.Equal(t, 1250.50, got.Value)
	assert.Len(t, got.ValueHistory, 1)
}

func TestValidateContribution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	asset := testAsset("fund-1")
	asset.Contribution = &models.RecurringContribution{
		Enabled:   true,
		Frequency: models.FrequencyMonthly,
		Amount:    100,
	}
	require.NoError(t, s.SaveAsset(ctx, asset))
	require.NoError(t, s.ValidateContribution(ctx, "fund-1", "2026-08"))

	got, err := s.GetAsset(ctx, "fund-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-08", got.Contribution.LastValidatedID)
}

func generatedEvent(id string, date time.Time) models.Event {
	return models.Event{
		ID:     id,
		Type:   models.EventMaturity,
		Title:  "Maturity approaching: Acme Bond",
		Date:   date,
		Source: models.SourceGenerated,
	}
}

func TestSyncGeneratedEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)
	due := now.AddDate(0, 0, 3)

	// First sync inserts everything unread.
	res, err := s.SyncGeneratedEvents(ctx, []models.Event{
		generatedEvent("maturity_bond-1", due),
		generatedEvent("stalevaluation_gold-1_2026-09-01", due),
	}, now)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Inserted: 2}, res)

	// Reader marks one as read.
	require.NoError(t, s.MarkEventRead(ctx, "maturity_bond-1", true))

	// Second sync: same maturity with refreshed text, stale one gone.
	refreshed := generatedEvent("maturity_bond-1", due)
	refreshed.Description = "Matures in 2 days"
	res, err = s.SyncGeneratedEvents(ctx, []models.Event{refreshed}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Updated: 1, Removed: 1}, res)

	got, err := s.GetEventByID(ctx, "maturity_bond-1")
	require.NoError(t, err)
	assert.True(t, got.IsRead, "read flag must survive a sync")
	assert.Equal(t, "Matures in 2 days", got.Description)
	assert.Equal(t, now, got.CreatedAt.Truncate(time.Second), "created_at must survive a sync")

	_, err = s.GetEventByID(ctx, "stalevaluation_gold-1_2026-09-01")
	assert.ErrorIs(t, err, errors.ErrEventNotFound)
}

func TestSyncLeavesUserEventsAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	userEvent := &models.Event{
		ID:        "user-note-1",
		Type:      models.EventDividend,
		Title:     "Dividend received",
		Date:      now,
		Source:    models.SourceUser,
		CreatedAt: now,
	}
	require.NoError(t, s.SaveEvent(ctx, userEvent))

	_, err := s.SyncGeneratedEvents(ctx, nil, now)
	require.NoError(t, err)

	got, err := s.GetEventByID(ctx, "user-note-1")
	require.NoError(t, err)
	assert.Equal(t, "Dividend received", got.Title)
}

func TestEventFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	events := []models.Event{
		{ID: "e1", Type: models.EventMaturity, Title: "a", Date: now.AddDate(0, 0, 1), AssetID: "bond-1", Source: models.SourceGenerated, CreatedAt: now},
		{ID: "e2", Type: models.EventDividend, Title: "b", Date: now.AddDate(0, 0, 5), AssetID: "fund-1", Source: models.SourceUser, CreatedAt: now},
		{ID: "e3", Type: models.EventMaturity, Title: "c", Date: now.AddDate(0, 0, 9), AssetID: "bond-2", Source: models.SourceGenerated, IsRead: true, CreatedAt: now},
	}
	for i := range events {
		require.NoError(t, s.SaveEvent(ctx, &events[i]))
	}

	maturities, err := s.GetEvents(ctx, EventFilter{Type: models.EventMaturity})
	require.NoError(t, err)
	assert.Len(t, maturities, 2)

	unread, err := s.GetEvents(ctx, EventFilter{Unread: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	window, err := s.GetEvents(ctx, EventFilter{
		StartDate: now.AddDate(0, 0, 2),
		EndDate:   now.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "e2", window[0].ID)
}

func TestPendingNotifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	n1 := models.PendingNotification{
		ID:      "maturity_bond-1",
		Title:   "Maturity approaching",
		Trigger: now.Add(-time.Minute),
	}
	n1.MarkOwned()
	n2 := models.PendingNotification{
		ID:      "assetcontrib_fund-1_monthly_2026-09",
		Title:   "Contribution due",
		Trigger: now.Add(48 * time.Hour),
	}
	n2.MarkOwned()

	require.NoError(t, s.SchedulePending(ctx, n1))
	require.NoError(t, s.SchedulePending(ctx, n2))

	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "maturity_bond-1", pending[0].ID)
	assert.True(t, pending[0].Owned())

	due, err := s.DeliverDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "maturity_bond-1", due[0].ID)

	// Delivered notifications are popped from the mirror.
	pending, err = s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "assetcontrib_fund-1_monthly_2026-09", pending[0].ID)

	require.NoError(t, s.CancelPending(ctx, pending[0].ID))
	pending, err = s.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestLastSync(t *testing.T) {
	s := newTestStore(t)

	assert.True(t, s.GetLastSync("events").IsZero())

	now := time.Now().Truncate(time.Second)
	require.NoError(t, s.SetLastSync("events", now))
	assert.Equal(t, now, s.GetLastSync("events").Truncate(time.Second))
}
