package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}

func TestHTTPRemote_Sync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, SyncPath, r.URL.Path)

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phone", req.DeviceID)
		assert.Equal(t, int64(7), req.LastSyncAt)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"data":      Response{Cards: req.Cards, ServerTime: 99},
			"timestamp": 99,
		})
	}))
	defer srv.Close()

	r := NewHTTPRemote(srv.URL + "/")
	r.Retry = fastRetry
	resp, err := r.Sync(context.Background(), Request{
		Cards:      []*model.AccountRecord{{SyncID: "a", UpdatedAt: 3}},
		LastSyncAt: 7,
		DeviceID:   "phone",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), resp.ServerTime)
	require.Len(t, resp.Cards, 1)
	assert.Equal(t, "a", resp.Cards[0].SyncID)
}

func TestHTTPRemote_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"error":"busy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"cards":[],"serverTime":5}}`))
	}))
	defer srv.Close()

	r := NewHTTPRemote(srv.URL)
	r.Retry = fastRetry
	resp, err := r.Sync(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ServerTime)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPRemote_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid card at index 0"}`))
	}))
	defer srv.Close()

	r := NewHTTPRemote(srv.URL)
	r.Retry = fastRetry
	_, err := r.Sync(context.Background(), Request{})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "invalid card at index 0", se.Message)
	assert.Equal(t, int32(1), calls.Load())
}
