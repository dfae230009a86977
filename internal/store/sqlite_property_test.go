package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"folio/internal/models"
)

// newScratchStore opens a store on a fresh temp database so each property
// iteration starts empty.
func newScratchStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := t.TempDir() + "/scratch.db"
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("opening scratch store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestProperty_SyncPreservesReadState checks that a repeated sync never
// loses the read flag or the original creation time of an event that
// survives from one candidate set to the next.
func TestProperty_SyncPreservesReadState(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("read flag survives resync", prop.ForAll(
		func(count int, readIdx int) bool {
			s := newScratchStore(t)
			ctx := context.Background()
			now := time.Now().Truncate(time.Second)

			candidates := make([]models.Event, count)
			for i := 0; i < count; i++ {
				candidates[i] = generatedEvent(
					fmt.Sprintf("maturity_bond-%d", i),
					now.AddDate(0, 0, i+1),
				)
			}

			if _, err := s.SyncGeneratedEvents(ctx, candidates, now); err != nil {
				return false
			}

			readID := candidates[readIdx%count].ID
			if err := s.MarkEventRead(ctx, readID, true); err != nil {
				return false
			}

			if _, err := s.SyncGeneratedEvents(ctx, candidates, now.Add(time.Hour)); err != nil {
				return false
			}

			got, err := s.GetEventByID(ctx, readID)
			if err != nil {
				return false
			}
			return got.IsRead && got.CreatedAt.Truncate(time.Second).Equal(now)
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 100),
	))

	properties.Property("sync is idempotent on a stable candidate set", prop.ForAll(
		func(count int) bool {
			s := newScratchStore(t)
			ctx := context.Background()
			now := time.Now().Truncate(time.Second)

			candidates := make([]models.Event, count)
			for i := 0; i < count; i++ {
				candidates[i] = generatedEvent(
					fmt.Sprintf("stalevaluation_gold-%d_2026-09-01", i),
					now.AddDate(0, 0, 2),
				)
			}

			first, err := s.SyncGeneratedEvents(ctx, candidates, now)
			if err != nil || first.Inserted != count {
				return false
			}

			second, err := s.SyncGeneratedEvents(ctx, candidates, now.Add(time.Minute))
			if err != nil {
				return false
			}
			if second.Inserted != 0 || second.Removed != 0 || second.Updated != count {
				return false
			}

			events, err := s.GetEvents(ctx, EventFilter{Source: models.SourceGenerated})
			return err == nil && len(events) == count
		},
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
