// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"folio/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Assets
	SaveAsset(ctx context.Context, asset *models.Asset) error
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	ListAssets(ctx context.Context, filter AssetFilter) ([]models.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	ApplyContribution(ctx context.Context, assetID, occurrenceID string, amount float64, appliedAt time.Time) error
	ValidateContribution(ctx context.Context, assetID, occurrenceID string) error

	// Events
	SaveEvent(ctx context.Context, event *models.Event) error
	GetEvents(ctx context.Context, filter EventFilter) ([]models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	MarkEventRead(ctx context.Context, id string, read bool) error
	DeleteEvent(ctx context.Context, id string) error
	SyncGeneratedEvents(ctx context.Context, candidates []models.Event, now time.Time) (SyncResult, error)

	// Device notification mirror
	ListPending(ctx context.Context) ([]models.PendingNotification, error)
	SchedulePending(ctx context.Context, n models.PendingNotification) error
	CancelPending(ctx context.Context, id string) error
	DeliverDue(ctx context.Context, now time.Time) ([]models.PendingNotification, error)

	// Sync
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error

	// Lifecycle
	Close() error
}

// AssetFilter represents filters for querying assets.
type AssetFilter struct {
	Category models.AssetCategory
	Name     string
	Limit    int
}

// EventFilter represents filters for querying events.
type EventFilter struct {
	Type      models.EventType
	AssetID   string
	Source    models.EventSource
	Unread    bool
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// SyncResult summarizes one SyncGeneratedEvents pass.
type SyncResult struct {
	Inserted int
	Updated  int
	Removed  int
}
