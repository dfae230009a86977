// Package device abstracts the platform's local notification surface.
// The store-backed implementation mirrors scheduled notifications into
// SQLite so the watch loop can deliver them; the in-memory one backs
// tests.
package device

import (
	"context"
	"sort"
	"sync"

	"folio/internal/errors"
	"folio/internal/models"
	"folio/internal/store"
)

// Scheduler is the device-side notification API. Implementations hold
// notifications from every app on the device, so callers must filter by
// ownership marker before cancelling anything.
type Scheduler interface {
	// Pending returns every scheduled notification, ours or not.
	Pending(ctx context.Context) ([]models.PendingNotification, error)
	// Schedule registers one notification for future delivery.
	Schedule(ctx context.Context, n models.PendingNotification) error
	// Cancel removes one scheduled notification by id.
	Cancel(ctx context.Context, id string) error
	// PermissionGranted reports whether the user allows notifications.
	PermissionGranted(ctx context.Context) (bool, error)
}

// StoreScheduler mirrors the device notification surface into the data
// store.
type StoreScheduler struct {
	store store.DataStore
}

// NewStoreScheduler wraps a data store as the device surface.
func NewStoreScheduler(s store.DataStore) *StoreScheduler {
	return &StoreScheduler{store: s}
}

func (d *StoreScheduler) Pending(ctx context.Context) ([]models.PendingNotification, error) {
	return d.store.ListPending(ctx)
}

func (d *StoreScheduler) Schedule(ctx context.Context, n models.PendingNotification) error {
	return d.store.SchedulePending(ctx, n)
}

func (d *StoreScheduler) Cancel(ctx context.Context, id string) error {
	return d.store.CancelPending(ctx, id)
}

// PermissionGranted always reports true for the store-backed surface;
// there is no OS permission dialog on a local mirror.
func (d *StoreScheduler) PermissionGranted(ctx context.Context) (bool, error) {
	return true, nil
}

// MemoryScheduler is an in-memory Scheduler for tests. It can simulate a
// revoked notification permission and foreign notifications scheduled by
// other apps.
type MemoryScheduler struct {
	mu         sync.Mutex
	pending    map[string]models.PendingNotification
	Denied     bool
	FailNextOp bool
}

func NewMemoryScheduler() *MemoryScheduler {
	return &MemoryScheduler{pending: make(map[string]models.PendingNotification)}
}

func (m *MemoryScheduler) Pending(ctx context.Context) ([]models.PendingNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeFailure() {
		return nil, errors.NewScheduleError("pending", "", errors.ErrDatabaseError)
	}
	out := make([]models.PendingNotification, 0, len(m.pending))
	for _, n := range m.pending {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Trigger.Before(out[j].Trigger) })
	return out, nil
}

func (m *MemoryScheduler) Schedule(ctx context.Context, n models.PendingNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeFailure() {
		return errors.NewScheduleError("schedule", n.ID, errors.ErrDatabaseError)
	}
	m.pending[n.ID] = n
	return nil
}

func (m *MemoryScheduler) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeFailure() {
		return errors.NewScheduleError("cancel", id, errors.ErrDatabaseError)
	}
	delete(m.pending, id)
	return nil
}

func (m *MemoryScheduler) PermissionGranted(ctx context.Context) (bool, error) {
	return !m.Denied, nil
}

// Seed places a notification directly on the surface, bypassing
// Schedule's failure simulation.
func (m *MemoryScheduler) Seed(n models.PendingNotification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[n.ID] = n
}

// Snapshot returns the current surface contents sorted by trigger time.
func (m *MemoryScheduler) Snapshot() []models.PendingNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PendingNotification, 0, len(m.pending))
	for _, n := range m.pending {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Trigger.Before(out[j].Trigger) })
	return out
}

func (m *MemoryScheduler) takeFailure() bool {
	if m.FailNextOp {
		m.FailNextOp = false
		return true
	}
	return false
}

var _ Scheduler = (*StoreScheduler)(nil)
var _ Scheduler = (*MemoryScheduler)(nil)
