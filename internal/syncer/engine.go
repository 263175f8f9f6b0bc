// Package syncer reconciles account records between devices and the server
// under last-writer-wins on updatedAt.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/google/uuid"
)

// Request is one device's push: its complete local set plus the watermark of
// its last successful sync.
type Request struct {
	Cards      []*model.AccountRecord `json:"cards"`
	LastSyncAt int64                  `json:"lastSyncAt"`
	DeviceID   string                 `json:"deviceId"`
}

// Response carries every record changed after the request watermark, and the
// watermark the device should send next time.
type Response struct {
	Cards      []*model.AccountRecord `json:"cards"`
	ServerTime int64                  `json:"serverTime"`
}

// Stats counts what a Sync call did with the pushed records.
type Stats struct {
	Received int
	Applied  int
	Stale    int
	Failed   int
	Returned int
}

// Engine applies pushes to an AccountStore.
type Engine struct {
	store store.AccountStore
	clock func() time.Time
	newID func() string
	log   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator replaces uuid v4 generation for empty syncIds.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates a sync engine over s using the wall clock and uuid ids
// unless overridden by opts.
func NewEngine(s store.AccountStore, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		clock: time.Now,
		newID: uuid.NewString,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "sync")
	return e
}

// Sync validates the whole batch before writing anything; one invalid record
// rejects the call with a *model.ValidationError. Records without a syncId
// get a fresh one. ServerTime is taken before the first write, so a record
// written concurrently by another device is returned again on the next sync
// rather than lost. A failed upsert is logged and skipped; the rest of the
// batch still applies.
func (e *Engine) Sync(ctx context.Context, req Request) (*Response, error) {
	if err := model.ValidateBatch(req.Cards); err != nil {
		return nil, err
	}

	serverTime := e.clock().Unix()
	stats := Stats{Received: len(req.Cards)}

	for _, card := range req.Cards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := card.Clone()
		if rec.SyncID == "" {
			rec.SyncID = e.newID()
		}
		applied, err := e.store.UpsertAccount(ctx, rec)
		switch {
		case err != nil:
			stats.Failed++
			e.log.Error("failed to upsert card", "device_id", req.DeviceID, "sync_id", rec.SyncID, "error", err)
		case applied:
			stats.Applied++
		default:
			stats.Stale++
		}
	}

	delta, err := e.store.ListAccountsUpdatedSince(ctx, req.LastSyncAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read changes since %d: %w", req.LastSyncAt, err)
	}
	if delta == nil {
		delta = []*model.AccountRecord{}
	}
	stats.Returned = len(delta)

	e.log.Info("sync completed",
		"device_id", req.DeviceID,
		"last_sync_at", req.LastSyncAt,
		"received", stats.Received,
		"applied", stats.Applied,
		"stale", stats.Stale,
		"failed", stats.Failed,
		"returned", stats.Returned)

	return &Response{Cards: delta, ServerTime: serverTime}, nil
}
