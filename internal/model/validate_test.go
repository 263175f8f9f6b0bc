package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRecord_Validate(t *testing.T) {
	tests := []struct {
		name      string
		rec       AccountRecord
		wantField string
	}{
		{name: "zero value is valid", rec: AccountRecord{}},
		{name: "full record", rec: AccountRecord{BillingDay: 1, PaymentDueDay: 28, CreditLimit: 50000, LastFourDigits: "1234", UpdatedAt: 10}},
		{name: "billing day 29", rec: AccountRecord{BillingDay: 29}, wantField: "billingDay"},
		{name: "negative due day", rec: AccountRecord{PaymentDueDay: -1}, wantField: "paymentDueDay"},
		{name: "negative limit", rec: AccountRecord{CreditLimit: -5}, wantField: "creditLimit"},
		{name: "negative updatedAt", rec: AccountRecord{UpdatedAt: -1}, wantField: "updatedAt"},
		{name: "three digit last four", rec: AccountRecord{LastFourDigits: "123"}, wantField: "lastFour"},
		{name: "non digit last four", rec: AccountRecord{LastFourDigits: "12a4"}, wantField: "lastFour"},
		{name: "full width digits rejected", rec: AccountRecord{LastFourDigits: "１２３４"}, wantField: "lastFour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestAccountRecord_ValidateForCreate(t *testing.T) {
	err := (&AccountRecord{BankName: "招商银行"}).ValidateForCreate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	err = (&AccountRecord{DisplayName: "daily"}).ValidateForCreate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bank")

	assert.NoError(t, (&AccountRecord{DisplayName: "daily", BankName: "招商银行"}).ValidateForCreate())
}

func TestValidateBatch_ReportsIndex(t *testing.T) {
	batch := []*AccountRecord{
		{SyncID: "a"},
		{SyncID: "b", BillingDay: 31},
		{SyncID: "c", CreditLimit: -1},
	}
	err := ValidateBatch(batch)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, ve.Index)
	assert.Equal(t, "b", ve.SyncID)
	assert.True(t, strings.Contains(err.Error(), "index 1"))

	assert.Error(t, ValidateBatch([]*AccountRecord{nil}))
	assert.NoError(t, ValidateBatch(nil))
}

func TestAccountRecord_NewerAndMerge(t *testing.T) {
	stored := &AccountRecord{SyncID: "s", DisplayName: "old", CreatedAt: 100, UpdatedAt: 200}

	assert.False(t, (&AccountRecord{UpdatedAt: 200}).Newer(stored), "equal timestamps keep stored")
	assert.False(t, (&AccountRecord{UpdatedAt: 199}).Newer(stored))
	assert.True(t, (&AccountRecord{UpdatedAt: 201}).Newer(stored))
	assert.True(t, (&AccountRecord{}).Newer(nil))

	incoming := &AccountRecord{SyncID: "s", DisplayName: "new", CreatedAt: 999, UpdatedAt: 201}
	incoming.MergeInto(stored)
	assert.Equal(t, "new", stored.DisplayName)
	assert.Equal(t, int64(100), stored.CreatedAt)
	assert.Equal(t, int64(201), stored.UpdatedAt)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"招商银行信用卡", 4, "招商银行"},
		{"", 3, ""},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.n))
	}

	long := strings.Repeat("账", MaxExcerptRunes+50)
	assert.Equal(t, MaxExcerptRunes, len([]rune(Excerpt(long))))
}

func TestMailConfig_View(t *testing.T) {
	cfg := MailConfig{Email: "me@qq.com", Password: "secret"}
	cfg = cfg.WithDefaults("")
	assert.Equal(t, DefaultIMAPHost, cfg.IMAPHost)

	v := cfg.View()
	assert.Equal(t, "me@qq.com", v.Email)
	assert.True(t, v.Configured)

	var nilCfg *MailConfig
	assert.False(t, nilCfg.Configured())
	assert.Equal(t, MailConfigView{}, nilCfg.View())
}
