package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/castlemilk/cardkeeper/internal/config"
	"github.com/castlemilk/cardkeeper/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	t.Setenv("CARDKEEPER_CONFIG", "")
	c, err := config.Load("")
	require.NoError(t, err)
	c.Store.Driver = driver
	c.Store.DataDir = t.TempDir()
	return c
}

func TestOpenStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			st, err := OpenStore(context.Background(), cfg.Store, logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })

			_, err = st.ListAccounts(context.Background(), true)
			assert.NoError(t, err)
		})
	}

	_, err := OpenStore(context.Background(), config.StoreConfig{Driver: "bogus"}, logger)
	assert.Error(t, err)
}

func TestNew_ServesHealthAndRejectsUnconfiguredMail(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(t, config.DriverMemory)
	st, err := OpenStore(context.Background(), cfg.Store, logger)
	require.NoError(t, err)

	a, err := New(cfg, st, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Service.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = a.Pipeline.Run(context.Background(), a.MailSource(cfg.Mail.DefaultHost))
	assert.ErrorIs(t, err, ingest.ErrNotConfigured)
}

func TestNew_RejectsBadPolicy(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Ingest.AmbiguousPolicy = "drop"
	_, err := New(cfg, nil, slog.Default())
	assert.Error(t, err)
}

func TestNew_RequiresConfiguredToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(t, config.DriverMemory)
	cfg.Server.APITokens = []string{"phone-token"}
	st, err := OpenStore(context.Background(), cfg.Store, logger)
	require.NoError(t, err)

	a, err := New(cfg, st, logger)
	require.NoError(t, err)
	srv := httptest.NewServer(a.Service.Handler())
	defer srv.Close()

	get := func(path, token string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get("/api/v1/health", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/api/v1/cards", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/api/v1/cards", "wrong"))
	assert.Equal(t, http.StatusOK, get("/api/v1/cards", "phone-token"))
}
