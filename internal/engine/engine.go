// Package engine drives the full derivation pipeline: auto-apply due
// contributions, regenerate candidate events from portfolio state, merge
// them into the store and reconcile the device notification schedule.
package engine

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"folio/internal/config"
	"folio/internal/events"
	"folio/internal/notify"
	"folio/internal/risk"
	"folio/internal/scheduler"
	"folio/internal/store"
)

// Engine owns one pipeline instance.
type Engine struct {
	store     store.DataStore
	scheduler *scheduler.Scheduler
	applier   *events.Applier
	notifier  notify.Notifier
	cfg       *config.Config
	logger    zerolog.Logger
	now       func() time.Time
}

// New assembles an engine from its collaborators.
func New(s store.DataStore, sched *scheduler.Scheduler, notifier notify.Notifier, cfg *config.Config, logger zerolog.Logger) *Engine {
	return &Engine{
		store:     s,
		scheduler: sched,
		applier:   events.NewApplier(s, logger),
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// ResyncResult reports what one pipeline run did.
type ResyncResult struct {
	Applied    int
	Candidates int
	Sync       store.SyncResult
}

// Resync runs one full pipeline pass: apply due auto-contributions,
// regenerate candidates, merge them into the event store and hand the
// merged timeline to the notification scheduler.
func (e *Engine) Resync(ctx context.Context) (ResyncResult, error) {
	var result ResyncResult
	now := e.now()

	assets, err := e.store.ListAssets(ctx, store.AssetFilter{})
	if err != nil {
		return result, err
	}

	result.Applied = e.applier.Run(ctx, assets, now)
	if result.Applied > 0 {
		// Applied contributions changed asset state; re-read it.
		assets, err = e.store.ListAssets(ctx, store.AssetFilter{})
		if err != nil {
			return result, err
		}
	}

	state := events.State{
		Assets:       assets,
		Prefs:        e.cfg.Notifications,
		Rooms:        e.cfg.Accounts.Rooms,
		PayFrequency: e.cfg.Accounts.PayFrequency,
		PayWeekday:   time.Weekday(e.cfg.Accounts.PayWeekday),
		PayDay:       e.cfg.Accounts.PayDay,
		Risk:         risk.Analyze(assets),
	}

	candidates := events.Generate(state, now)
	result.Candidates = len(candidates)

	result.Sync, err = e.store.SyncGeneratedEvents(ctx, candidates, now)
	if err != nil {
		return result, err
	}

	if err := e.store.SetLastSync("events", now); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to record sync time")
	}

	// User-authored events notify too, so feed the full timeline.
	merged, err := e.store.GetEvents(ctx, store.EventFilter{})
	if err != nil {
		return result, err
	}

	e.scheduler.StateChanged(ctx, merged, e.cfg.Notifications)

	e.logger.Info().
		Int("applied", result.Applied).
		Int("candidates", result.Candidates).
		Int("inserted", result.Sync.Inserted).
		Int("updated", result.Sync.Updated).
		Int("removed", result.Sync.Removed).
		Msg("Resync complete")

	return result, nil
}

// DeliverDue pops fired notifications off the mirror and pushes them
// through the configured delivery channels. Returns how many were
// delivered.
func (e *Engine) DeliverDue(ctx context.Context) (int, error) {
	now := e.now()
	due, err := e.store.DeliverDue(ctx, now)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, n := range due {
		if err := e.notifier.Send(ctx, notify.FromPending(n, now)); err != nil {
			e.logger.Warn().Err(err).
				Str("notification_id", n.ID).
				Msg("Delivery failed")
			continue
		}
		delivered++
	}
	return delivered, nil
}

// Watch runs resync and delivery on a cron cadence until the context is
// cancelled. Resync runs every 15 minutes, delivery every minute.
func (e *Engine) Watch(ctx context.Context) error {
	c := cron.New()

	if _, err := c.AddFunc("@every 15m", func() {
		if _, err := e.Resync(ctx); err != nil {
			e.logger.Error().Err(err).Msg("Scheduled resync failed")
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc("@every 1m", func() {
		n, err := e.DeliverDue(ctx)
		if err != nil {
			e.logger.Error().Err(err).Msg("Scheduled delivery failed")
			return
		}
		if n > 0 {
			e.logger.Info().Int("delivered", n).Msg("Notifications delivered")
		}
	}); err != nil {
		return err
	}

	// Run one pass immediately so the watch starts from fresh state.
	if _, err := e.Resync(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Initial resync failed")
	}

	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}
