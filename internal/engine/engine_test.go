package engine

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
	"folio/internal/device"
	"folio/internal/models"
	"folio/internal/notify"
	"folio/internal/scheduler"
	"folio/internal/store"
)

var engineNow = time.Date(2026, time.August, 26, 12, 0, 0, 0, time.Local)

type recordingNotifier struct {
	sent []notify.Notification
}

func (r *recordingNotifier) Send(ctx context.Context, n notify.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func newTestEngine(t *testing.T) (*Engine, store.DataStore, *device.MemoryScheduler, *recordingNotifier) {
	t.Helper()
	dbPath := "test_engine_" + t.Name() + ".db"
	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	})

	dev := device.NewMemoryScheduler()
	sched := scheduler.New(dev, zerolog.Nop())
	sched.SetDebounce(0)
	sched.SetClock(func() time.Time { return engineNow })

	notifier := &recordingNotifier{}
	cfg := &config.Config{Notifications: models.DefaultNotificationPreferences()}

	e := New(s, sched, notifier, cfg, zerolog.Nop())
	e.SetClock(func() time.Time { return engineNow })
	return e, s, dev, notifier
}

func TestResyncEndToEnd(t *testing.T) {
	e, s, dev, _ := newTestEngine(t)
	ctx := context.Background()

	maturity := engineNow.AddDate(0, 0, 3)
	bond := &models.Asset{
		ID:           "bond-1",
		Name:         "Acme Bond",
		Category:     models.CategoryBond,
		Currency:     "USD",
		Value:        10000,
		MaturityDate: &maturity,
		CreatedAt:    engineNow,
		UpdatedAt:    engineNow,
	}
	require.NoError(t, s.SaveAsset(ctx, bond))

	fund := &models.Asset{
		ID:        "fund-1",
		Name:      "Index Fund",
		Category:  models.CategoryFund,
		Currency:  "USD",
		Value:     1000,
		CreatedAt: engineNow,
		UpdatedAt: engineNow,
		Contribution: &models.RecurringContribution{
			Enabled:    true,
			Frequency:  models.FrequencyMonthly,
			DayOfMonth: 15,
			Amount:     500,
			AutoApply:  true,
		},
	}
	require.NoError(t, s.SaveAsset(ctx, fund))

	result, err := e.Resync(ctx)
	require.NoError(t, err)

	// The August occurrence was due and auto-applied.
	assert.Equal(t, 1, result.Applied)
	got, err := s.GetAsset(ctx, "fund-1")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got.Value)
	assert.Equal(t, "2026-08", got.Contribution.LastAppliedID)

	// The maturity candidate landed in the store unread.
	event, err := s.GetEventByID(ctx, "maturity_bond-1")
	require.NoError(t, err)
	assert.Equal(t, "Matures in 3 days", event.Description)
	assert.False(t, event.IsRead)

	// The scheduler pushed the plan onto the device surface.
	snapshot := dev.Snapshot()
	require.NotEmpty(t, snapshot)
	ids := make(map[string]bool)
	for _, n := range snapshot {
		ids[n.ID] = true
		assert.True(t, n.Owned())
	}
	assert.True(t, ids["maturity_bond-1"])

	assert.False(t, s.GetLastSync("events").IsZero())
}

func TestResyncIsIdempotent(t *testing.T) {
	e, s, _, _ := newTestEngine(t)
	ctx := context.Background()

	maturity := engineNow.AddDate(0, 0, 10)
	bond := &models.Asset{
		ID:           "bond-1",
		Name:         "Acme Bond",
		Category:     models.CategoryBond,
		Currency:     "USD",
		Value:        10000,
		MaturityDate: &maturity,
		CreatedAt:    engineNow,
		UpdatedAt:    engineNow,
	}
	require.NoError(t, s.SaveAsset(ctx, bond))

	first, err := e.Resync(ctx)
	require.NoError(t, err)
	require.NoError(t, s.MarkEventRead(ctx, "maturity_bond-1", true))

	second, err := e.Resync(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Candidates, second.Candidates)
	assert.Zero(t, second.Sync.Inserted)
	assert.Zero(t, second.Sync.Removed)

	event, err := s.GetEventByID(ctx, "maturity_bond-1")
	require.NoError(t, err)
	assert.True(t, event.IsRead)
}

func TestDeliverDue(t *testing.T) {
	e, s, _, notifier := newTestEngine(t)
	ctx := context.Background()

	due := models.PendingNotification{
		ID:      "maturity_bond-1",
		Title:   "Maturity approaching: Acme Bond",
		Body:    "Matures today",
		Trigger: engineNow.Add(-time.Minute),
		Payload: map[string]string{"event_id": "maturity_bond-1"},
	}
	due.MarkOwned()
	future := models.PendingNotification{
		ID:      "assetcontrib_fund-1_monthly_2026-09",
		Title:   "Contribution due: Index Fund",
		Trigger: engineNow.Add(24 * time.Hour),
	}
	future.MarkOwned()

	require.NoError(t, s.SchedulePending(ctx, due))
	require.NoError(t, s.SchedulePending(ctx, future))

	delivered, err := e.DeliverDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "maturity_bond-1", notifier.sent[0].EventID)

	// The future one is still pending.
	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "assetcontrib_fund-1_monthly_2026-09", pending[0].ID)
}
