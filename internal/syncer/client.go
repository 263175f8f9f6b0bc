package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/google/uuid"
)

// LocalRecord is a record as held on a device. ID is the device's own row
// key and never leaves the device.
type LocalRecord struct {
	ID int64
	model.AccountRecord
}

// LocalStore is the on-device persistence the client needs.
type LocalStore interface {
	// All returns every local record, deleted ones included.
	All(ctx context.Context) ([]*LocalRecord, error)
	// Get looks a record up by syncId and returns store.ErrNotFound when
	// absent.
	Get(ctx context.Context, syncID string) (*LocalRecord, error)
	Insert(ctx context.Context, rec *model.AccountRecord) (int64, error)
	// UpdateFields overwrites every field of row id except createdAt.
	UpdateFields(ctx context.Context, id int64, rec *model.AccountRecord) error
	SoftDelete(ctx context.Context, id int64, at int64) error
}

// Remote is the server side of a sync round trip.
type Remote interface {
	Sync(ctx context.Context, req Request) (*Response, error)
}

// Client runs the device half of the protocol.
type Client struct {
	local    LocalStore
	remote   Remote
	deviceID string
	clock    func() time.Time
	newID    func() string
	log      *slog.Logger
}

// ClientOptions tune a Client. Zero values select time.Now, uuid v4 and
// slog.Default.
type ClientOptions struct {
	DeviceID string
	Clock    func() time.Time
	NewID    func() string
	Logger   *slog.Logger
}

// NewClient creates a device-side sync client. Unset options default to
// time.Now, uuid ids and slog.Default.
func NewClient(local LocalStore, remote Remote, opts ClientOptions) *Client {
	c := &Client{
		local:    local,
		remote:   remote,
		deviceID: opts.DeviceID,
		clock:    opts.Clock,
		newID:    opts.NewID,
		log:      opts.Logger,
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("component", "sync-client", "device_id", opts.DeviceID)
	return c
}

// Create stores a new local record with a fresh syncId and timestamps.
func (c *Client) Create(ctx context.Context, rec *model.AccountRecord) (*LocalRecord, error) {
	if err := rec.ValidateForCreate(); err != nil {
		return nil, err
	}
	now := c.clock().Unix()
	r := rec.Clone()
	r.SyncID = c.newID()
	r.IsDeleted = false
	r.CreatedAt = now
	r.UpdatedAt = now
	id, err := c.local.Insert(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to insert card: %w", err)
	}
	return &LocalRecord{ID: id, AccountRecord: *r}, nil
}

// Update applies a local edit. updatedAt never moves backwards, even when the
// device clock is behind the stored value.
func (c *Client) Update(ctx context.Context, syncID string, rec *model.AccountRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	existing, err := c.local.Get(ctx, syncID)
	if err != nil {
		return err
	}
	r := rec.Clone()
	r.SyncID = syncID
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = advance(c.clock().Unix(), existing.UpdatedAt)
	return c.local.UpdateFields(ctx, existing.ID, r)
}

// Delete soft-deletes a local record so the tombstone reaches other devices.
func (c *Client) Delete(ctx context.Context, syncID string) error {
	existing, err := c.local.Get(ctx, syncID)
	if err != nil {
		return err
	}
	return c.local.SoftDelete(ctx, existing.ID, advance(c.clock().Unix(), existing.UpdatedAt))
}

// Sync pushes every local record, applies the returned delta under the same
// strict last-writer-wins rule as the server, and returns the new watermark.
// Records still missing a syncId get one, persisted locally, before the push
// so the server never mints a second identity for them.
func (c *Client) Sync(ctx context.Context, lastSyncAt int64) (int64, error) {
	locals, err := c.local.All(ctx)
	if err != nil {
		return lastSyncAt, fmt.Errorf("failed to read local cards: %w", err)
	}

	push := make([]*model.AccountRecord, 0, len(locals))
	for _, l := range locals {
		rec := l.AccountRecord.Clone()
		if rec.SyncID == "" {
			rec.SyncID = c.newID()
			if err := c.local.UpdateFields(ctx, l.ID, rec); err != nil {
				return lastSyncAt, fmt.Errorf("failed to assign sync id to local card %d: %w", l.ID, err)
			}
		}
		push = append(push, rec)
	}

	resp, err := c.remote.Sync(ctx, Request{Cards: push, LastSyncAt: lastSyncAt, DeviceID: c.deviceID})
	if err != nil {
		return lastSyncAt, err
	}

	var inserted, updated, kept int
	for _, incoming := range resp.Cards {
		if incoming == nil || incoming.SyncID == "" {
			continue
		}
		existing, err := c.local.Get(ctx, incoming.SyncID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if _, err := c.local.Insert(ctx, incoming); err != nil {
				return lastSyncAt, fmt.Errorf("failed to insert card %s: %w", incoming.SyncID, err)
			}
			inserted++
		case err != nil:
			return lastSyncAt, fmt.Errorf("failed to read card %s: %w", incoming.SyncID, err)
		case incoming.Newer(&existing.AccountRecord):
			if err := c.local.UpdateFields(ctx, existing.ID, incoming); err != nil {
				return lastSyncAt, fmt.Errorf("failed to update card %s: %w", incoming.SyncID, err)
			}
			updated++
		default:
			kept++
		}
	}

	c.log.Info("sync applied",
		"pushed", len(push),
		"received", len(resp.Cards),
		"inserted", inserted,
		"updated", updated,
		"kept", kept,
		"server_time", resp.ServerTime)
	return resp.ServerTime, nil
}

func advance(now, stored int64) int64 {
	if now > stored {
		return now
	}
	return stored + 1
}
