// Package matching links extracted statement fields to a stored account.
package matching

import (
	"strings"
	"unicode"

	"github.com/castlemilk/cardkeeper/internal/extraction"
	"github.com/castlemilk/cardkeeper/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// Result is the outcome of one match. Account is nil when nothing matched.
type Result struct {
	Account    *model.AccountRecord
	MatchedBy  model.MatchMethod
	Confidence model.Confidence
	// Candidates lists every account the deciding tier accepted, in input
	// order; more than one means the match is ambiguous.
	Candidates []*model.AccountRecord
}

// Matched reports whether an account was selected.
func (r Result) Matched() bool {
	return r.Account != nil
}

// Matcher applies the tiers full card, masked last four, then holder name.
// The first tier to produce a candidate decides the result.
type Matcher struct{}

// NewMatcher creates a stateless account matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match considers only non-deleted accounts, in the order given.
func (m *Matcher) Match(fields extraction.Fields, accounts []*model.AccountRecord) Result {
	active := make([]*model.AccountRecord, 0, len(accounts))
	for _, a := range accounts {
		if a != nil && !a.IsDeleted {
			active = append(active, a)
		}
	}

	if fields.FullCardNumber != "" {
		last := fields.LastFour()
		for _, a := range active {
			if a.LastFourDigits != "" && a.LastFourDigits == last {
				return Result{Account: a, MatchedBy: model.MatchFullCard, Confidence: model.ConfidenceHigh, Candidates: []*model.AccountRecord{a}}
			}
		}
	}

	if fields.MaskedLastFour != "" {
		var candidates []*model.AccountRecord
		for _, a := range active {
			if a.LastFourDigits != "" && a.LastFourDigits == fields.MaskedLastFour {
				candidates = append(candidates, a)
			}
		}
		if r, ok := decide(candidates, model.MatchLastFour, model.ConfidenceMedium); ok {
			return r
		}
	}

	if fields.HolderName != "" {
		want := m.NormalizeName(fields.HolderName)
		var candidates []*model.AccountRecord
		for _, a := range active {
			if want != "" && m.NormalizeName(a.HolderName) == want {
				candidates = append(candidates, a)
			}
		}
		if r, ok := decide(candidates, model.MatchName, model.ConfidenceLow); ok {
			return r
		}
	}

	return Result{}
}

// decide picks the first candidate; several candidates downgrade the
// confidence to ambiguous.
func decide(candidates []*model.AccountRecord, by model.MatchMethod, single model.Confidence) (Result, bool) {
	switch len(candidates) {
	case 0:
		return Result{}, false
	case 1:
		return Result{Account: candidates[0], MatchedBy: by, Confidence: single, Candidates: candidates}, true
	default:
		return Result{Account: candidates[0], MatchedBy: by, Confidence: model.ConfidenceAmbiguous, Candidates: candidates}, true
	}
}

// NormalizeName folds full-width forms, upper-cases and removes all
// whitespace, so "Zhang San", "ＺＨＡＮＧ　ＳＡＮ" and "ZHANGSAN" compare equal.
func (m *Matcher) NormalizeName(name string) string {
	folded := width.Fold.String(name)
	// Casers are stateful; one per call keeps Matcher safe to share.
	upper := cases.Upper(language.Und).String(folded)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, upper)
}
