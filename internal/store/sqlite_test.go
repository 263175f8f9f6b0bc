package store_test

import (
	"context"
	"testing"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/castlemilk/cardkeeper/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, dir string) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openSQLite(t, t.TempDir())
	})
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.OpenSQLite(dir)
	require.NoError(t, err)
	_, err = s.UpsertAccount(ctx, &model.AccountRecord{SyncID: "a", DisplayName: "kept", UpdatedAt: 3})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Migrations must be a no-op on an up to date database.
	reopened := openSQLite(t, dir)
	got, err := reopened.GetAccount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.DisplayName)
}
