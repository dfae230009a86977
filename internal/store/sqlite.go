package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"folio/internal/errors"
	"folio/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	syncTimes map[string]time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Tracked portfolio assets
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		currency TEXT NOT NULL,
		value REAL NOT NULL,
		purchase_date DATETIME,
		maturity_date DATETIME,
		manual_valuation INTEGER DEFAULT 0,
		value_history TEXT,
		contribution TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	-- Timeline events, generated and user-authored
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		date DATETIME NOT NULL,
		asset_id TEXT,
		asset_name TEXT,
		amount REAL,
		currency TEXT,
		source TEXT NOT NULL,
		is_read INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	-- Mirror of the device's scheduled local notifications
	CREATE TABLE IF NOT EXISTS pending_notifications (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT,
		trigger_at DATETIME NOT NULL,
		payload TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sync status table
	CREATE TABLE IF NOT EXISTS sync_status (
		data_type TEXT PRIMARY KEY,
		last_sync DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_assets_category ON assets(category);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
	CREATE INDEX IF NOT EXISTS idx_events_source ON events(source);
	CREATE INDEX IF NOT EXISTS idx_events_asset ON events(asset_id);
	CREATE INDEX IF NOT EXISTS idx_pending_trigger ON pending_notifications(trigger_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Assets ---

// SaveAsset inserts or replaces an asset.
func (s *SQLiteStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	history, err := json.Marshal(asset.ValueHistory)
	if err != nil {
		return errors.NewStoreError("asset", asset.ID, "encoding value history", err)
	}
	var contribution []byte
	if asset.Contribution != nil {
		contribution, err = json.Marshal(asset.Contribution)
		if err != nil {
			return errors.NewStoreError("asset", asset.ID, "encoding contribution", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assets
		(id, name, category, currency, value, purchase_date, maturity_date,
		 manual_valuation, value_history, contribution, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.ID, asset.Name, string(asset.Category), asset.Currency, asset.Value,
		nullableTime(asset.PurchaseDate), nullableTime(asset.MaturityDate),
		boolToInt(asset.ManualValuation), string(history), nullableString(contribution),
		asset.CreatedAt, asset.UpdatedAt,
	)
	if err != nil {
		return errors.NewStoreError("asset", asset.ID, "saving", err)
	}
	return nil
}

// GetAsset retrieves an asset by id.
func (s *SQLiteStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, currency, value, purchase_date, maturity_date,
		       manual_valuation, value_history, contribution, created_at, updated_at
		FROM assets WHERE id = ?`, id)

	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrAssetNotFound
	}
	if err != nil {
		return nil, errors.NewStoreError("asset", id, "querying", err)
	}
	return asset, nil
}

// ListAssets returns assets matching the filter, newest first.
func (s *SQLiteStore) ListAssets(ctx context.Context, filter AssetFilter) ([]models.Asset, error) {
	query := `
		SELECT id, name, category, currency, value, purchase_date, maturity_date,
		       manual_valuation, value_history, contribution, created_at, updated_at
		FROM assets WHERE 1=1`
	var args []interface{}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if filter.Name != "" {
		query += " AND name LIKE ?"
		args = append(args, "%"+filter.Name+"%")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("asset", "", "listing", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, errors.NewStoreError("asset", "", "scanning", err)
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

// DeleteAsset removes an asset by id.
func (s *SQLiteStore) DeleteAsset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return errors.NewStoreError("asset", id, "deleting", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrAssetNotFound
	}
	return nil
}

// ApplyContribution adds a contribution to the asset's recorded value,
// appends a value history point and stamps the occurrence as applied.
func (s *SQLiteStore) ApplyContribution(ctx context.Context, assetID, occurrenceID string, amount float64, appliedAt time.Time) error {
	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Contribution == nil {
		return errors.NewStoreError("asset", assetID, "no recurring contribution configured", nil)
	}
	if asset.Contribution.LastAppliedID == occurrenceID {
		// Already applied for this occurrence; keep the operation idempotent.
		return nil
	}

	newValue, _ := decimal.NewFromFloat(asset.Value).
		Add(decimal.NewFromFloat(amount)).
		Round(2).
		Float64()

	asset.Value = newValue
	asset.ValueHistory = append(asset.ValueHistory, models.ValuePoint{Date: appliedAt, Value: newValue})
	asset.Contribution.LastAppliedID = occurrenceID
	asset.UpdatedAt = appliedAt

	return s.SaveAsset(ctx, asset)
}

// ValidateContribution stamps the occurrence as confirmed by the user.
func (s *SQLiteStore) ValidateContribution(ctx context.Context, assetID, occurrenceID string) error {
	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.Contribution == nil {
		return errors.NewStoreError("asset", assetID, "no recurring contribution configured", nil)
	}

	asset.Contribution.LastValidatedID = occurrenceID
	return s.SaveAsset(ctx, asset)
}

// --- Events ---

// SaveEvent inserts or replaces an event.
func (s *SQLiteStore) SaveEvent(ctx context.Context, event *models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO events
		(id, type, title, description, date, asset_id, asset_name, amount, currency, source, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), event.Title, event.Description, event.Date,
		event.AssetID, event.AssetName, event.Amount, event.Currency,
		string(event.Source), boolToInt(event.IsRead), event.CreatedAt,
	)
	if err != nil {
		return errors.NewStoreError("event", event.ID, "saving", err)
	}
	return nil
}

// GetEvents returns events matching the filter, ordered by due date.
func (s *SQLiteStore) GetEvents(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := `
		SELECT id, type, title, description, date, asset_id, asset_name, amount, currency, source, is_read, created_at
		FROM events WHERE 1=1`
	var args []interface{}

	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.AssetID != "" {
		query += " AND asset_id = ?"
		args = append(args, filter.AssetID)
	}
	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}
	if filter.Unread {
		query += " AND is_read = 0"
	}
	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate)
	}
	query += " ORDER BY date ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("event", "", "listing", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, errors.NewStoreError("event", "", "scanning", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// GetEventByID retrieves a single event.
func (s *SQLiteStore) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, title, description, date, asset_id, asset_name, amount, currency, source, is_read, created_at
		FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrEventNotFound
	}
	if err != nil {
		return nil, errors.NewStoreError("event", id, "querying", err)
	}
	return event, nil
}

// MarkEventRead flips the read flag on an event.
func (s *SQLiteStore) MarkEventRead(ctx context.Context, id string, read bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE events SET is_read = ? WHERE id = ?`, boolToInt(read), id)
	if err != nil {
		return errors.NewStoreError("event", id, "marking read", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event by id.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return errors.NewStoreError("event", id, "deleting", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrEventNotFound
	}
	return nil
}

// SyncGeneratedEvents replaces the generated subset of the event timeline
// with the candidate list. User-authored events are never touched. For ids
// that already exist, is_read and created_at are preserved; new ids are
// inserted unread with created_at=now; previously generated events whose id
// is no longer in the candidate set are removed.
func (s *SQLiteStore) SyncGeneratedEvents(ctx context.Context, candidates []models.Event, now time.Time) (SyncResult, error) {
	var result SyncResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, errors.NewStoreError("event", "", "starting sync transaction", err)
	}
	defer tx.Rollback()

	existing := make(map[string]bool)
	rows, err := tx.QueryContext(ctx, `SELECT id FROM events WHERE source = ?`, string(models.SourceGenerated))
	if err != nil {
		return result, errors.NewStoreError("event", "", "reading generated events", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return result, errors.NewStoreError("event", "", "scanning generated ids", err)
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return result, errors.NewStoreError("event", "", "reading generated events", err)
	}

	keep := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		keep[c.ID] = true

		if existing[c.ID] {
			// Refresh content, preserve is_read/created_at.
			_, err = tx.ExecContext(ctx, `
				UPDATE events
				SET type = ?, title = ?, description = ?, date = ?,
				    asset_id = ?, asset_name = ?, amount = ?, currency = ?
				WHERE id = ?`,
				string(c.Type), c.Title, c.Description, c.Date,
				c.AssetID, c.AssetName, c.Amount, c.Currency, c.ID,
			)
			if err != nil {
				return result, errors.NewStoreError("event", c.ID, "updating during sync", err)
			}
			result.Updated++
			continue
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO events
			(id, type, title, description, date, asset_id, asset_name, amount, currency, source, is_read, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
			c.ID, string(c.Type), c.Title, c.Description, c.Date,
			c.AssetID, c.AssetName, c.Amount, c.Currency,
			string(models.SourceGenerated), now,
		)
		if err != nil {
			return result, errors.NewStoreError("event", c.ID, "inserting during sync", err)
		}
		result.Inserted++
	}

	for id := range existing {
		if keep[id] || !generatedPrefix(id) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
			return result, errors.NewStoreError("event", id, "removing during sync", err)
		}
		result.Removed++
	}

	if err := tx.Commit(); err != nil {
		return result, errors.NewStoreError("event", "", "committing sync", err)
	}
	return result, nil
}

// --- Pending notifications ---

// ListPending returns all pending notifications, soonest trigger first.
func (s *SQLiteStore) ListPending(ctx context.Context) ([]models.PendingNotification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, trigger_at, payload
		FROM pending_notifications ORDER BY trigger_at ASC`)
	if err != nil {
		return nil, errors.NewStoreError("notification", "", "listing", err)
	}
	defer rows.Close()

	var pending []models.PendingNotification
	for rows.Next() {
		n, err := scanPending(rows)
		if err != nil {
			return nil, errors.NewStoreError("notification", "", "scanning", err)
		}
		pending = append(pending, *n)
	}
	return pending, rows.Err()
}

// SchedulePending stores one scheduled notification.
func (s *SQLiteStore) SchedulePending(ctx context.Context, n models.PendingNotification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return errors.NewStoreError("notification", n.ID, "encoding payload", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO pending_notifications (id, title, body, trigger_at, payload)
		VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Body, n.Trigger, string(payload),
	)
	if err != nil {
		return errors.NewStoreError("notification", n.ID, "scheduling", err)
	}
	return nil
}

// CancelPending removes one scheduled notification.
func (s *SQLiteStore) CancelPending(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_notifications WHERE id = ?`, id); err != nil {
		return errors.NewStoreError("notification", id, "cancelling", err)
	}
	return nil
}

// DeliverDue pops every pending notification whose trigger has passed.
func (s *SQLiteStore) DeliverDue(ctx context.Context, now time.Time) ([]models.PendingNotification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, trigger_at, payload
		FROM pending_notifications WHERE trigger_at <= ? ORDER BY trigger_at ASC`, now)
	if err != nil {
		return nil, errors.NewStoreError("notification", "", "querying due", err)
	}
	defer rows.Close()

	var due []models.PendingNotification
	for rows.Next() {
		n, err := scanPending(rows)
		if err != nil {
			return nil, errors.NewStoreError("notification", "", "scanning due", err)
		}
		due = append(due, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, n := range due {
		if err := s.CancelPending(ctx, n.ID); err != nil {
			return due, err
		}
	}
	return due, nil
}

// --- Sync status ---

// GetLastSync returns the last recorded sync time for a data type.
func (s *SQLiteStore) GetLastSync(dataType string) time.Time {
	s.mu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var t time.Time
	err := s.db.QueryRow(`SELECT last_sync FROM sync_status WHERE data_type = ?`, dataType).Scan(&t)
	if err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()
	return t
}

// SetLastSync records the sync time for a data type.
func (s *SQLiteStore) SetLastSync(dataType string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sync_status (data_type, last_sync, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)`, dataType, t)
	if err != nil {
		return errors.NewStoreError("sync_status", dataType, "saving", err)
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	var a models.Asset
	var category, history string
	var contribution sql.NullString
	var purchase, maturity sql.NullTime
	var manual int

	err := row.Scan(&a.ID, &a.Name, &category, &a.Currency, &a.Value,
		&purchase, &maturity, &manual, &history, &contribution,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Category = models.AssetCategory(category)
	a.ManualValuation = manual != 0
	if purchase.Valid {
		t := purchase.Time
		a.PurchaseDate = &t
	}
	if maturity.Valid {
		t := maturity.Time
		a.MaturityDate = &t
	}
	if history != "" {
		if err := json.Unmarshal([]byte(history), &a.ValueHistory); err != nil {
			return nil, fmt.Errorf("decoding value history: %w", err)
		}
	}
	if contribution.Valid && contribution.String != "" {
		var c models.RecurringContribution
		if err := json.Unmarshal([]byte(contribution.String), &c); err != nil {
			return nil, fmt.Errorf("decoding contribution: %w", err)
		}
		a.Contribution = &c
	}
	return &a, nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	var typ, source string
	var isRead int

	err := row.Scan(&e.ID, &typ, &e.Title, &e.Description, &e.Date,
		&e.AssetID, &e.AssetName, &e.Amount, &e.Currency, &source,
		&isRead, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Type = models.EventType(typ)
	e.Source = models.EventSource(source)
	e.IsRead = isRead != 0
	return &e, nil
}

func scanPending(row rowScanner) (*models.PendingNotification, error) {
	var n models.PendingNotification
	var payload string

	if err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Trigger, &payload); err != nil {
		return nil, err
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &n.Payload); err != nil {
			return nil, fmt.Errorf("decoding payload: %w", err)
		}
	}
	return &n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func nullableString(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// generatedPrefix reports whether an id belongs to a generator id space.
// Kept as a guard for callers that pass arbitrary ids into sync-sensitive
// deletions.
func generatedPrefix(id string) bool {
	for _, p := range models.GeneratedPrefixes() {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
