package matching

import (
	"testing"

	"github.com/castlemilk/cardkeeper/internal/extraction"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(syncID, lastFour, holder string) *model.AccountRecord {
	return &model.AccountRecord{SyncID: syncID, LastFourDigits: lastFour, HolderName: holder}
}

func TestMatch_Tiers(t *testing.T) {
	a := account("a", "1234", "张三")
	b := account("b", "1234", "李四")
	c := account("c", "5678", "Zhang San")
	deleted := account("d", "9999", "王五")
	deleted.IsDeleted = true
	accounts := []*model.AccountRecord{a, b, c, deleted}

	tests := []struct {
		name       string
		fields     extraction.Fields
		wantID     string
		wantBy     model.MatchMethod
		wantConf   model.Confidence
		wantCandID []string
	}{
		{
			name:     "full card beats name",
			fields:   extraction.Fields{FullCardNumber: "6225880100005678", HolderName: "李四"},
			wantID:   "c",
			wantBy:   model.MatchFullCard,
			wantConf: model.ConfidenceHigh,
		},
		{
			name:     "full card takes first exact match even when shared",
			fields:   extraction.Fields{FullCardNumber: "6225880100001234"},
			wantID:   "a",
			wantBy:   model.MatchFullCard,
			wantConf: model.ConfidenceHigh,
		},
		{
			name:     "masked single candidate",
			fields:   extraction.Fields{MaskedLastFour: "5678"},
			wantID:   "c",
			wantBy:   model.MatchLastFour,
			wantConf: model.ConfidenceMedium,
		},
		{
			name:       "masked ambiguous picks first in order",
			fields:     extraction.Fields{MaskedLastFour: "1234"},
			wantID:     "a",
			wantBy:     model.MatchLastFour,
			wantConf:   model.ConfidenceAmbiguous,
			wantCandID: []string{"a", "b"},
		},
		{
			name:     "unmatched full card falls through to masked",
			fields:   extraction.Fields{FullCardNumber: "6225880100000000", MaskedLastFour: "5678"},
			wantID:   "c",
			wantBy:   model.MatchLastFour,
			wantConf: model.ConfidenceMedium,
		},
		{
			name:     "name tier normalises case and spaces",
			fields:   extraction.Fields{HolderName: "ZHANGSAN"},
			wantID:   "c",
			wantBy:   model.MatchName,
			wantConf: model.ConfidenceLow,
		},
		{
			name:   "deleted accounts ignored",
			fields: extraction.Fields{MaskedLastFour: "9999", HolderName: "王五"},
		},
		{
			name:   "no evidence",
			fields: extraction.Fields{BankName: "招商银行"},
		},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := m.Match(tt.fields, accounts)
			if tt.wantID == "" {
				assert.False(t, r.Matched())
				assert.Nil(t, r.Account)
				return
			}
			require.True(t, r.Matched())
			assert.Equal(t, tt.wantID, r.Account.SyncID)
			assert.Equal(t, tt.wantBy, r.MatchedBy)
			assert.Equal(t, tt.wantConf, r.Confidence)
			if tt.wantCandID != nil {
				var ids []string
				for _, c := range r.Candidates {
					ids = append(ids, c.SyncID)
				}
				assert.Equal(t, tt.wantCandID, ids)
			}
		})
	}
}

func TestMatch_NameAmbiguous(t *testing.T) {
	m := NewMatcher()
	accounts := []*model.AccountRecord{account("x", "", "张 三"), account("y", "", "张三")}
	r := m.Match(extraction.Fields{HolderName: "张三"}, accounts)
	require.True(t, r.Matched())
	assert.Equal(t, "x", r.Account.SyncID)
	assert.Equal(t, model.ConfidenceAmbiguous, r.Confidence)
}

func TestMatch_EmptyStoredLastFourNeverMatches(t *testing.T) {
	r := NewMatcher().Match(extraction.Fields{MaskedLastFour: "0000"}, []*model.AccountRecord{account("a", "", "")})
	assert.False(t, r.Matched())
}

func TestNormalizeName(t *testing.T) {
	m := NewMatcher()
	tests := []struct {
		in   string
		want string
	}{
		{"Zhang San", "ZHANGSAN"},
		{"ＺＨＡＮＧ　ＳＡＮ", "ZHANGSAN"},
		{" 张 三 ", "张三"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.NormalizeName(tt.in), tt.in)
	}
}
