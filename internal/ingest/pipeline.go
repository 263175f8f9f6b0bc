// Package ingest runs one statement ingestion pass: fetch, decode, extract,
// match and save.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/castlemilk/cardkeeper/internal/extraction"
	"github.com/castlemilk/cardkeeper/internal/mailbox"
	"github.com/castlemilk/cardkeeper/internal/matching"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
)

// ErrNotConfigured means no usable mailbox credentials are stored.
var ErrNotConfigured = errors.New("mail account is not configured")

// AmbiguousPolicy decides what happens to a statement whose match is
// ambiguous.
type AmbiguousPolicy string

const (
	// PolicyAttach links the statement to the first candidate account.
	PolicyAttach AmbiguousPolicy = "attach"
	// PolicyUnassigned stores the statement without an account so it can be
	// reviewed and assigned by hand.
	PolicyUnassigned AmbiguousPolicy = "unassigned"
)

// ParsePolicy maps a configuration value to a policy.
func ParsePolicy(s string) (AmbiguousPolicy, error) {
	switch AmbiguousPolicy(s) {
	case "", PolicyAttach:
		return PolicyAttach, nil
	case PolicyUnassigned:
		return PolicyUnassigned, nil
	}
	return "", fmt.Errorf("unknown ambiguous match policy %q", s)
}

// Summary counts the outcome of one run. Total always equals Saved plus
// Skipped; Duplicates, Unmatched and Failed break Skipped down.
type Summary struct {
	Total      int `json:"total"`
	Saved      int `json:"saved"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Unmatched  int `json:"unmatched"`
	Failed     int `json:"failed"`
}

// Options tune a Pipeline.
type Options struct {
	AmbiguousPolicy AmbiguousPolicy
	Clock           func() time.Time
	Logger          *slog.Logger
}

// Pipeline reads accounts but never writes them.
type Pipeline struct {
	accounts   store.AccountReader
	statements store.StatementStore
	decoder    *extraction.Decoder
	extractor  *extraction.Extractor
	matcher    *matching.Matcher
	policy     AmbiguousPolicy
	clock      func() time.Time
	log        *slog.Logger
}

// New creates an ingestion pipeline. The ambiguous policy defaults to
// PolicyAttach.
func New(accounts store.AccountReader, statements store.StatementStore, decoder *extraction.Decoder, extractor *extraction.Extractor, matcher *matching.Matcher, opts Options) *Pipeline {
	if opts.AmbiguousPolicy == "" {
		opts.AmbiguousPolicy = PolicyAttach
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		accounts:   accounts,
		statements: statements,
		decoder:    decoder,
		extractor:  extractor,
		matcher:    matcher,
		policy:     opts.AmbiguousPolicy,
		clock:      opts.Clock,
		log:        logger.With("component", "ingest"),
	}
}

// Run executes one pass over src. A fetch failure is returned as-is with an
// empty summary and nothing saved. Per-message problems are counted, never
// returned. Cancellation stops between messages and returns the partial
// summary with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, src mailbox.Source) (Summary, error) {
	var sum Summary

	msgs, err := src.Fetch(ctx)
	if err != nil {
		return sum, err
	}
	accounts, err := p.accounts.ListAccounts(ctx, false)
	if err != nil {
		return sum, fmt.Errorf("failed to list cards: %w", err)
	}

	fetchedAt := p.clock().Unix()
	for _, raw := range msgs {
		if err := ctx.Err(); err != nil {
			p.log.Warn("run cancelled", "processed", sum.Total, "remaining", len(msgs)-sum.Total)
			return sum, err
		}
		sum.Total++

		stmt, reason := p.Build(raw, accounts, fetchedAt)
		if stmt == nil {
			sum.Skipped++
			sum.Unmatched++
			p.log.Debug("message skipped", "message_id", raw.MessageID, "reason", reason)
			continue
		}

		inserted, err := p.statements.SaveStatement(ctx, stmt)
		switch {
		case err != nil:
			sum.Skipped++
			sum.Failed++
			p.log.Error("failed to save statement", "message_id", raw.MessageID, "error", err)
		case !inserted:
			sum.Skipped++
			sum.Duplicates++
		default:
			sum.Saved++
			p.log.Info("statement saved",
				"message_id", raw.MessageID,
				"card", stmt.AccountSyncID,
				"bank", stmt.BankName,
				"matched_by", stmt.MatchedBy,
				"confidence", stmt.MatchConfidence)
		}
	}

	p.log.Info("run completed",
		"total", sum.Total,
		"saved", sum.Saved,
		"skipped", sum.Skipped,
		"duplicates", sum.Duplicates,
		"unmatched", sum.Unmatched,
		"failed", sum.Failed)
	return sum, nil
}

// Skip reasons reported by Build.
const (
	ReasonNoMatch = "no_match"
	ReasonNone    = ""
)

// Build is the side-effect free part of the pipeline. It returns nil and a
// reason when the message cannot be attributed to any account.
func (p *Pipeline) Build(raw mailbox.RawMessage, accounts []*model.AccountRecord, fetchedAt int64) (*model.Statement, string) {
	decoded := p.decoder.Decode(raw)
	fields := p.extractor.Extract(decoded.Text, decoded.Subject, decoded.From)

	result := p.matcher.Match(fields, accounts)
	if !result.Matched() {
		return nil, ReasonNoMatch
	}

	bank := fields.BankName
	if bank == "" {
		bank = result.Account.BankName
	}
	accountID := result.Account.SyncID
	if result.Confidence == model.ConfidenceAmbiguous && p.policy == PolicyUnassigned {
		accountID = ""
	}

	format := decoded.Format
	if format == "" {
		format = model.FormatText
	}
	currency := fields.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	return &model.Statement{
		AccountSyncID:   accountID,
		MailMessageID:   raw.MessageID,
		MailUID:         raw.UID,
		BankName:        bank,
		Amount:          fields.Amount,
		Currency:        currency,
		StatementDate:   fields.StatementDate,
		DueDate:         fields.DueDate,
		MinPayment:      fields.MinPayment,
		Format:          format,
		MatchedBy:       result.MatchedBy,
		MatchConfidence: result.Confidence,
		RawContent:      model.Excerpt(decoded.Text),
		FetchedAt:       fetchedAt,
	}, ReasonNone
}
