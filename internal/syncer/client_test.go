package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLocal is a LocalStore backed by a map keyed on the local row id.
type memLocal struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*LocalRecord
}

func newMemLocal() *memLocal {
	return &memLocal{rows: make(map[int64]*LocalRecord)}
}

func (m *memLocal) All(ctx context.Context) ([]*LocalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*LocalRecord, 0, len(m.rows))
	for _, r := range m.rows {
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLocal) Get(ctx context.Context, syncID string) (*LocalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.SyncID == syncID {
			c := *r
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memLocal) Insert(ctx context.Context, rec *model.AccountRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows[m.nextID] = &LocalRecord{ID: m.nextID, AccountRecord: *rec}
	return m.nextID, nil
}

func (m *memLocal) UpdateFields(ctx context.Context, id int64, rec *model.AccountRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.MergeInto(&r.AccountRecord)
	return nil
}

func (m *memLocal) SoftDelete(ctx context.Context, id int64, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	r.IsDeleted = true
	r.UpdatedAt = at
	return nil
}

type engineRemote struct{ e *Engine }

func (r engineRemote) Sync(ctx context.Context, req Request) (*Response, error) {
	return r.e.Sync(ctx, req)
}

type failingRemote struct{ err error }

func (r failingRemote) Sync(ctx context.Context, req Request) (*Response, error) {
	return nil, r.err
}

type clock struct{ now int64 }

func (c *clock) Now() time.Time { return time.Unix(c.now, 0) }

func TestClient_AssignsSyncIDBeforePush(t *testing.T) {
	ctx := context.Background()
	local := newMemLocal()
	_, err := local.Insert(ctx, &model.AccountRecord{DisplayName: "offline", BankName: "工商银行", CreatedAt: 5, UpdatedAt: 5})
	require.NoError(t, err)

	server := store.NewMemoryStore()
	c := NewClient(local, engineRemote{NewEngine(server, WithClock(fixedClock(100)))},
		ClientOptions{DeviceID: "tablet", NewID: sequentialIDs("dev")})

	watermark, err := c.Sync(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), watermark)

	rows, err := local.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1, "echoed record must not be inserted twice")
	assert.Equal(t, "dev-1", rows[0].SyncID)

	all, err := server.ListAccounts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev-1"}, syncIDs(all))
}

func TestClient_TwoDevicesConverge(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: 10}
	server := NewEngine(store.NewMemoryStore(), WithClock(clk.Now))

	ids := sequentialIDs("id")
	localA, localB := newMemLocal(), newMemLocal()
	a := NewClient(localA, engineRemote{server}, ClientOptions{DeviceID: "a", Clock: clk.Now, NewID: ids})
	b := NewClient(localB, engineRemote{server}, ClientOptions{DeviceID: "b", Clock: clk.Now, NewID: ids})

	created, err := a.Create(ctx, &model.AccountRecord{DisplayName: "daily", BankName: "招商银行", LastFourDigits: "1234"})
	require.NoError(t, err)

	clk.now = 20
	wmA, err := a.Sync(ctx, 0)
	require.NoError(t, err)
	clk.now = 30
	wmB, err := b.Sync(ctx, 0)
	require.NoError(t, err)

	gotB, err := localB.Get(ctx, created.SyncID)
	require.NoError(t, err)
	assert.Equal(t, "daily", gotB.DisplayName)

	clk.now = 40
	edit := gotB.AccountRecord
	edit.Notes = "edited on b"
	require.NoError(t, b.Update(ctx, created.SyncID, &edit))
	clk.now = 50
	wmB, err = b.Sync(ctx, wmB)
	require.NoError(t, err)
	clk.now = 60
	wmA, err = a.Sync(ctx, wmA)
	require.NoError(t, err)

	gotA, err := localA.Get(ctx, created.SyncID)
	require.NoError(t, err)
	assert.Equal(t, "edited on b", gotA.Notes)
	assert.Equal(t, int64(40), gotA.UpdatedAt)

	clk.now = 70
	require.NoError(t, a.Delete(ctx, created.SyncID))
	clk.now = 80
	_, err = a.Sync(ctx, wmA)
	require.NoError(t, err)
	clk.now = 90
	_, err = b.Sync(ctx, wmB)
	require.NoError(t, err)

	gotB, err = localB.Get(ctx, created.SyncID)
	require.NoError(t, err)
	assert.True(t, gotB.IsDeleted)
	assert.Equal(t, int64(70), gotB.UpdatedAt)
}

func TestClient_UpdateNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	local := newMemLocal()
	_, err := local.Insert(ctx, &model.AccountRecord{SyncID: "x", DisplayName: "n", BankName: "b", CreatedAt: 1, UpdatedAt: 500})
	require.NoError(t, err)

	c := NewClient(local, failingRemote{}, ClientOptions{Clock: fixedClock(100)})
	require.NoError(t, c.Update(ctx, "x", &model.AccountRecord{DisplayName: "renamed", BankName: "b"}))

	got, err := local.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(501), got.UpdatedAt)
	assert.Equal(t, int64(1), got.CreatedAt)
	assert.Equal(t, "renamed", got.DisplayName)
}

func TestClient_RemoteFailureKeepsWatermark(t *testing.T) {
	remoteErr := errors.New("offline")
	c := NewClient(newMemLocal(), failingRemote{err: remoteErr}, ClientOptions{})

	wm, err := c.Sync(context.Background(), 42)
	assert.ErrorIs(t, err, remoteErr)
	assert.Equal(t, int64(42), wm)
}

func TestClient_CreateValidates(t *testing.T) {
	c := NewClient(newMemLocal(), failingRemote{}, ClientOptions{})
	_, err := c.Create(context.Background(), &model.AccountRecord{BankName: "b"})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func ExampleClient_Sync() {
	ctx := context.Background()
	server := NewEngine(store.NewMemoryStore(), WithClock(fixedClock(1700000000)))
	c := NewClient(newMemLocal(), engineRemote{server}, ClientOptions{DeviceID: "phone"})

	wm, err := c.Sync(ctx, 0)
	fmt.Println(wm, err)
	// Output: 1700000000 <nil>
}
