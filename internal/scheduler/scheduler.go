// Package scheduler maps unread, opted-in events onto the device's
// local notification surface. Each pass re-derives the full desired
// schedule, cancels everything this app previously scheduled and adds
// the new set, so the device state always converges on the latest
// computed plan.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/device"
	"folio/internal/logging"
	"folio/internal/models"
	"folio/internal/recurrence"
)

const (
	// WindowDays bounds how far ahead a notification may be scheduled.
	WindowDays = 90
	// MaxScheduled is the device scheduling budget per pass.
	MaxScheduled = 48
	// pastGrace is how soon an already-due trigger fires.
	pastGrace = 30 * time.Second
	// defaultDebounce coalesces bursts of state changes into one pass.
	defaultDebounce = 600 * time.Millisecond
)

// Plan expands eligible events into concrete notification items:
// filtered by preference, windowed to [now, now+90d], sorted by trigger
// and capped at the device budget. Maturity events may yield a heads-up
// item ahead of the day-of item; a heads-up whose offset already passed
// is dropped rather than rescheduled.
func Plan(events []models.Event, prefs models.NotificationPreferences, now time.Time) []models.PendingNotification {
	var items []models.PendingNotification

	horizon := now.AddDate(0, 0, WindowDays)
	within := func(t time.Time) bool {
		return !t.Before(now) && !t.After(horizon)
	}

	for _, event := range events {
		if !shouldNotify(event, prefs) {
			continue
		}

		if event.Type == models.EventMaturity {
			if prefs.MaturityDaysBefore > 0 {
				headsUp := event.Date.AddDate(0, 0, -prefs.MaturityDaysBefore)
				if within(headsUp) {
					items = append(items, buildItem(event.ID+"_advance", event, headsUp))
				}
			}
			if within(event.Date) {
				items = append(items, buildItem(event.ID, event, event.Date))
			}
			continue
		}

		trigger := recurrence.AtDueHour(event.Date)
		if trigger.Before(now) {
			trigger = now.Add(pastGrace)
		}
		if within(trigger) {
			items = append(items, buildItem(event.ID, event, trigger))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Trigger.Before(items[j].Trigger)
	})
	if len(items) > MaxScheduled {
		items = items[:MaxScheduled]
	}
	return items
}

func shouldNotify(event models.Event, prefs models.NotificationPreferences) bool {
	return prefs.Enabled && !event.IsRead && prefs.AllowsType(event.Type)
}

func buildItem(id string, event models.Event, trigger time.Time) models.PendingNotification {
	n := models.PendingNotification{
		ID:      id,
		Title:   event.Title,
		Body:    event.Description,
		Trigger: trigger,
		Payload: map[string]string{"event_id": event.ID},
	}
	n.MarkOwned()
	return n
}

// Signature summarizes the scheduling inputs. Two states with equal
// signatures produce identical plans, so the pass can be skipped.
func Signature(events []models.Event, prefs models.NotificationPreferences) string {
	var b strings.Builder

	encoded, _ := json.Marshal(prefs)
	b.Write(encoded)

	for _, e := range events {
		fmt.Fprintf(&b, "|%s:%s:%d:%t", e.ID, e.Type, e.Date.Unix(), e.IsRead)
	}
	return b.String()
}

// Scheduler debounces state changes and executes scheduling passes
// against the device surface.
type Scheduler struct {
	device   device.Scheduler
	logger   zerolog.Logger
	debounce time.Duration
	now      func() time.Time

	mu            sync.Mutex
	timer         *time.Timer
	lastSignature string
	events        []models.Event
	prefs         models.NotificationPreferences
}

// New creates a scheduler with the default debounce delay.
func New(dev device.Scheduler, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		device:   dev,
		logger:   logger,
		debounce: defaultDebounce,
		now:      time.Now,
	}
}

// SetDebounce overrides the quiescence delay. A zero duration makes
// StateChanged execute passes synchronously.
func (s *Scheduler) SetDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = d
}

// SetClock overrides the time source.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// StateChanged records the latest events and preferences and arms a
// single-slot debounce timer. A new call before the timer fires replaces
// the pending pass, so only the latest state is ever executed. A signature
// matching the last executed pass disarms any pending pass instead of
// arming a new one.
func (s *Scheduler) StateChanged(ctx context.Context, events []models.Event, prefs models.NotificationPreferences) {
	s.mu.Lock()

	sig := Signature(events, prefs)
	s.events = events
	s.prefs = prefs
	if sig == s.lastSignature {
		// The state reverted to what is already on the device. Any armed
		// pass belongs to a superseded intermediate state, so disarm it.
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.mu.Unlock()
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.debounce <= 0 {
		s.mu.Unlock()
		s.runPending(ctx)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.runPending(ctx)
	})
	s.mu.Unlock()
}

// Flush cancels any armed debounce timer and runs the pending pass
// immediately if the recorded state differs from the last executed one.
func (s *Scheduler) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.runPending(ctx)
}

func (s *Scheduler) runPending(ctx context.Context) {
	s.mu.Lock()
	events := s.events
	prefs := s.prefs
	sig := Signature(events, prefs)
	if sig == s.lastSignature {
		s.mu.Unlock()
		return
	}
	s.lastSignature = sig
	s.mu.Unlock()

	s.runPass(ctx, events, prefs)
}

// Reschedule bypasses the debounce and signature check and executes a
// full pass with the given state.
func (s *Scheduler) Reschedule(ctx context.Context, events []models.Event, prefs models.NotificationPreferences) {
	s.mu.Lock()
	s.events = events
	s.prefs = prefs
	s.lastSignature = Signature(events, prefs)
	s.mu.Unlock()

	s.runPass(ctx, events, prefs)
}

// runPass cancels every notification this app owns, then schedules the
// new plan. Device errors are logged and never propagated; a failed pass
// silently retries on the next state change.
func (s *Scheduler) runPass(ctx context.Context, events []models.Event, prefs models.NotificationPreferences) {
	granted, err := s.device.PermissionGranted(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Notification permission check failed")
		granted = false
	}

	cancelled := s.cancelOwned(ctx)

	if !granted || !prefs.Enabled {
		logging.LogSchedulePass(s.logger, cancelled, 0, 0)
		return
	}

	s.mu.Lock()
	now := s.now()
	s.mu.Unlock()

	items := Plan(events, prefs, now)

	scheduled, skipped := 0, 0
	for _, item := range items {
		if err := s.device.Schedule(ctx, item); err != nil {
			s.logger.Warn().Err(err).
				Str("notification_id", item.ID).
				Msg("Failed to schedule notification")
			skipped++
			continue
		}
		scheduled++
	}

	logging.LogSchedulePass(s.logger, cancelled, scheduled, skipped)
}

// cancelOwned removes notifications carrying this app's marker. Foreign
// notifications on the same surface are left alone.
func (s *Scheduler) cancelOwned(ctx context.Context) int {
	pending, err := s.device.Pending(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read pending notifications")
		return 0
	}

	cancelled := 0
	for _, n := range pending {
		if !n.Owned() {
			continue
		}
		if err := s.device.Cancel(ctx, n.ID); err != nil {
			s.logger.Warn().Err(err).
				Str("notification_id", n.ID).
				Msg("Failed to cancel notification")
			continue
		}
		cancelled++
	}
	return cancelled
}
