package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/castlemilk/cardkeeper/internal/auth"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/retry"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/castlemilk/cardkeeper/internal/syncer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2ESync drives the sync endpoint through the HTTP client a device uses.
func TestE2ESync(t *testing.T) {
	tokens, err := auth.NewTokenSet([]string{"device-token"})
	require.NoError(t, err)

	st := store.NewMemoryStore()
	clock := &testClock{now: 1_700_000_000}
	svc := NewCardService(Options{
		Store:  st,
		Engine: syncer.NewEngine(st, syncer.WithClock(clock.Now)),
		Tokens: tokens,
		Clock:  clock.Now,
	})
	server := httptest.NewServer(NewHTTPHandler(svc.Handler(), nil))
	defer server.Close()

	newRemote := func(token string) *syncer.HTTPRemote {
		r := syncer.NewHTTPRemote(server.URL + "/")
		r.Retry = retry.Config{MaxRetries: 0, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
		r.Token = token
		r.DeviceID = "phone"
		return r
	}

	t.Run("health needs no token", func(t *testing.T) {
		resp, err := http.Get(server.URL + HealthPath)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		_, err := newRemote("stolen").Sync(context.Background(), syncer.Request{})
		var se *syncer.StatusError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
		assert.Equal(t, "unauthorized", se.Message)
	})

	t.Run("push then pull", func(t *testing.T) {
		remote := newRemote("device-token")
		resp, err := remote.Sync(context.Background(), syncer.Request{
			Cards: []*model.AccountRecord{{
				SyncID:      "a1",
				DisplayName: "招行经典白",
				BankName:    "招商银行",
				CreatedAt:   10,
				UpdatedAt:   20,
			}},
			DeviceID: "phone",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1_700_000_000), resp.ServerTime)
		require.Len(t, resp.Cards, 1)
		assert.Equal(t, "a1", resp.Cards[0].SyncID)

		resp, err = remote.Sync(context.Background(), syncer.Request{LastSyncAt: 20})
		require.NoError(t, err)
		assert.Empty(t, resp.Cards)
		assert.NotNil(t, resp.Cards)

		stored, err := st.GetAccount(context.Background(), "a1")
		require.NoError(t, err)
		assert.Equal(t, "招行经典白", stored.DisplayName)
	})

	t.Run("invalid batch is not retried", func(t *testing.T) {
		_, err := newRemote("device-token").Sync(context.Background(), syncer.Request{
			Cards: []*model.AccountRecord{{SyncID: "bad", BillingDay: 31, UpdatedAt: 1}},
		})
		var se *syncer.StatusError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.False(t, se.IsRetryable())
	})
}
