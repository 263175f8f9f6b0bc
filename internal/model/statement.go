package model

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrency is assigned to every extracted statement.
const DefaultCurrency = "CNY"

// MaxExcerptRunes bounds Statement.RawContent.
const MaxExcerptRunes = 2000

// StatementFormat records which body representation a statement came from.
type StatementFormat string

const (
	FormatText StatementFormat = "text"
	FormatHTML StatementFormat = "html"
	FormatPDF  StatementFormat = "pdf"
)

// MatchMethod names the matcher tier that selected an account.
type MatchMethod string

const (
	MatchFullCard MatchMethod = "full_card"
	MatchLastFour MatchMethod = "last_four"
	MatchName     MatchMethod = "name"
)

// Confidence grades a match.
type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceAmbiguous Confidence = "ambiguous"
)

// Statement is a billing summary recovered from one mail message and linked
// to an account. Amount and MinPayment are nil when not found in the message.
type Statement struct {
	ID              int64            `json:"id" firestore:"id"`
	AccountSyncID   string           `json:"cardSyncId" firestore:"cardSyncId"`
	MailMessageID   string           `json:"mailMessageId" firestore:"mailMessageId"`
	MailUID         uint32           `json:"emailUid" firestore:"emailUid"`
	BankName        string           `json:"bank" firestore:"bank"`
	Amount          *decimal.Decimal `json:"amount" firestore:"-"`
	Currency        string           `json:"currency" firestore:"currency"`
	StatementDate   string           `json:"billDate" firestore:"billDate"`
	DueDate         string           `json:"dueDate" firestore:"dueDate"`
	MinPayment      *decimal.Decimal `json:"minPayment" firestore:"-"`
	Format          StatementFormat  `json:"statementType" firestore:"statementType"`
	MatchedBy       MatchMethod      `json:"matchedBy" firestore:"matchedBy"`
	MatchConfidence Confidence       `json:"matchConfidence" firestore:"matchConfidence"`
	RawContent      string           `json:"rawContent" firestore:"rawContent"`
	FetchedAt       int64            `json:"fetchedAt" firestore:"fetchedAt"`
}

// Clone returns a deep copy of s.
func (s *Statement) Clone() *Statement {
	if s == nil {
		return nil
	}
	c := *s
	if s.Amount != nil {
		a := *s.Amount
		c.Amount = &a
	}
	if s.MinPayment != nil {
		m := *s.MinPayment
		c.MinPayment = &m
	}
	return &c
}

// Excerpt truncates text to at most MaxExcerptRunes runes.
func Excerpt(text string) string {
	return TruncateRunes(text, MaxExcerptRunes)
}

// TruncateRunes cuts s to n runes without splitting a multi-byte sequence.
func TruncateRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
