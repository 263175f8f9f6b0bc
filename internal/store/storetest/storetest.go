// Package storetest holds behaviour checks shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Cleanup is registered by the factory.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"UpsertInsertsMissing", testUpsertInsertsMissing},
		{"UpsertStrictlyNewerWins", testUpsertStrictlyNewerWins},
		{"UpsertKeepsCreatedAt", testUpsertKeepsCreatedAt},
		{"ConcurrentSameSyncID", testConcurrentSameSyncID},
		{"DeltaOrderingAndDeleted", testDeltaOrderingAndDeleted},
		{"ListAccountsStableOrder", testListAccountsStableOrder},
		{"SoftDelete", testSoftDelete},
		{"GetMissing", testGetMissing},
		{"StatementDedup", testStatementDedup},
		{"StatementListing", testStatementListing},
		{"StatementExcerptCap", testStatementExcerptCap},
		{"MailConfigRoundTrip", testMailConfigRoundTrip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func card(syncID string, createdAt, updatedAt int64) *model.AccountRecord {
	return &model.AccountRecord{
		SyncID:      syncID,
		DisplayName: "card " + syncID,
		BankName:    "招商银行",
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func testUpsertInsertsMissing(t *testing.T, s store.Store) {
	ctx := context.Background()
	applied, err := s.UpsertAccount(ctx, card("a", 10, 10))
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := s.GetAccount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "card a", got.DisplayName)
	assert.Equal(t, int64(10), got.UpdatedAt)
}

func testUpsertStrictlyNewerWins(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.UpsertAccount(ctx, card("a", 10, 100))
	require.NoError(t, err)

	tests := []struct {
		name      string
		updatedAt int64
		label     string
		applied   bool
		wantLabel string
	}{
		{"older loses", 99, "older", false, "card a"},
		{"equal keeps stored", 100, "equal", false, "card a"},
		{"newer wins", 101, "newer", true, "newer"},
	}
	for _, tt := range tests {
		rec := card("a", 10, tt.updatedAt)
		rec.DisplayName = tt.label
		applied, err := s.UpsertAccount(ctx, rec)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.applied, applied, tt.name)

		got, err := s.GetAccount(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, tt.wantLabel, got.DisplayName, tt.name)
	}
}

func testUpsertKeepsCreatedAt(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.UpsertAccount(ctx, card("a", 10, 20))
	require.NoError(t, err)

	rec := card("a", 999, 30)
	rec.IsDeleted = true
	rec.LastFourDigits = "4321"
	_, err = s.UpsertAccount(ctx, rec)
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.CreatedAt)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, "4321", got.LastFourDigits)
}

// testConcurrentSameSyncID races writers of one card; the newest version
// must be the one left standing whatever order they land in.
func testConcurrentSameSyncID(t *testing.T, s store.Store) {
	ctx := context.Background()
	const writers = 8

	var wg sync.WaitGroup
	errs := make([]error, writers)
	applied := make([]bool, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := card("x", 1, int64(i+1))
			rec.DisplayName = fmt.Sprintf("v%d", i+1)
			applied[i], errs[i] = s.UpsertAccount(ctx, rec)
		}(i)
	}
	wg.Wait()

	n := 0
	for i := range errs {
		require.NoError(t, errs[i], "writer %d", i+1)
		if applied[i] {
			n++
		}
	}
	assert.GreaterOrEqual(t, n, 1)

	got, err := s.GetAccount(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(writers), got.UpdatedAt)
	assert.Equal(t, fmt.Sprintf("v%d", writers), got.DisplayName)
	assert.Equal(t, int64(1), got.CreatedAt)
}

func testDeltaOrderingAndDeleted(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, rec := range []*model.AccountRecord{card("a", 1, 100), card("b", 2, 300), card("c", 3, 200), card("d", 4, 50)} {
		_, err := s.UpsertAccount(ctx, rec)
		require.NoError(t, err)
	}
	_, err := s.SoftDeleteAccount(ctx, "c", 250)
	require.NoError(t, err)

	delta, err := s.ListAccountsUpdatedSince(ctx, 100)
	require.NoError(t, err)
	ids := make([]string, 0, len(delta))
	for _, r := range delta {
		ids = append(ids, r.SyncID)
	}
	assert.Equal(t, []string{"b", "c"}, ids)
	assert.True(t, delta[1].IsDeleted)

	all, err := s.ListAccountsUpdatedSince(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func testListAccountsStableOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, rec := range []*model.AccountRecord{card("z", 5, 5), card("b", 1, 1), card("a", 5, 5), card("x", 3, 3)} {
		_, err := s.UpsertAccount(ctx, rec)
		require.NoError(t, err)
	}
	_, err := s.SoftDeleteAccount(ctx, "x", 10)
	require.NoError(t, err)

	active, err := s.ListAccounts(ctx, false)
	require.NoError(t, err)
	var ids []string
	for _, r := range active {
		ids = append(ids, r.SyncID)
	}
	assert.Equal(t, []string{"b", "a", "z"}, ids)

	all, err := s.ListAccounts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func testSoftDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.UpsertAccount(ctx, card("a", 10, 500))
	require.NoError(t, err)

	// A clock behind the stored timestamp still advances updatedAt.
	got, err := s.SoftDeleteAccount(ctx, "a", 400)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, int64(501), got.UpdatedAt)

	got, err = s.SoftDeleteAccount(ctx, "a", 900)
	require.NoError(t, err)
	assert.Equal(t, int64(900), got.UpdatedAt)

	_, err = s.SoftDeleteAccount(ctx, "missing", 900)
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
}

func testGetMissing(t *testing.T, s store.Store) {
	_, err := s.GetAccount(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetMailConfig(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func statement(mid string, account string, fetchedAt int64) *model.Statement {
	amount := decimal.RequireFromString("1234.56")
	return &model.Statement{
		AccountSyncID:   account,
		MailMessageID:   mid,
		MailUID:         7,
		BankName:        "招商银行",
		Amount:          &amount,
		Currency:        model.DefaultCurrency,
		StatementDate:   "2024-03-05",
		DueDate:         "2024-03-23",
		Format:          model.FormatHTML,
		MatchedBy:       model.MatchLastFour,
		MatchConfidence: model.ConfidenceMedium,
		RawContent:      "本期应还款额 1,234.56",
		FetchedAt:       fetchedAt,
	}
}

func testStatementDedup(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := statement("<m1@bank>", "a", 100)
	inserted, err := s.SaveStatement(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, first.ID)

	again := statement("<m1@bank>", "b", 200)
	inserted, err = s.SaveStatement(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, again.ID)

	list, err := s.ListStatements(ctx, store.StatementFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].AccountSyncID)
	require.NotNil(t, list[0].Amount)
	assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("1234.56")))
	assert.Nil(t, list[0].MinPayment)
	assert.Equal(t, model.FormatHTML, list[0].Format)
	assert.Equal(t, uint32(7), list[0].MailUID)
}

func testStatementListing(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i, account := range []string{"a", "b", "", "a"} {
		_, err := s.SaveStatement(ctx, statement(fmt.Sprintf("<m%d@bank>", i), account, int64(100+i)))
		require.NoError(t, err)
	}

	all, err := s.ListStatements(ctx, store.StatementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, int64(103), all[0].FetchedAt)
	assert.Equal(t, int64(100), all[3].FetchedAt)

	forA, err := s.ListStatements(ctx, store.StatementFilter{AccountSyncID: "a"})
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	unassigned, err := s.ListStatements(ctx, store.StatementFilter{Unassigned: true})
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, "<m2@bank>", unassigned[0].MailMessageID)

	limited, err := s.ListStatements(ctx, store.StatementFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func testStatementExcerptCap(t *testing.T, s store.Store) {
	ctx := context.Background()
	st := statement("<long@bank>", "a", 1)
	st.RawContent = strings.Repeat("账", model.MaxExcerptRunes+10)
	st.Currency = ""
	_, err := s.SaveStatement(ctx, st)
	require.NoError(t, err)

	list, err := s.ListStatements(ctx, store.StatementFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.MaxExcerptRunes, len([]rune(list[0].RawContent)))
	assert.Equal(t, model.DefaultCurrency, list[0].Currency)
}

func testMailConfigRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveMailConfig(ctx, &model.MailConfig{Email: "a@qq.com", Password: "p1", IMAPHost: "imap.qq.com:993"}))
	require.NoError(t, s.SaveMailConfig(ctx, &model.MailConfig{Email: "b@qq.com", Password: "p2", IMAPHost: "imap.163.com:993", UpdatedAt: 5}))

	got, err := s.GetMailConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b@qq.com", got.Email)
	assert.Equal(t, "p2", got.Password)
	assert.Equal(t, "imap.163.com:993", got.IMAPHost)
}
