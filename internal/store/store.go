package store

import (
	"context"
	"errors"

	"github.com/castlemilk/cardkeeper/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// MaxStatementList caps ListStatements.
const MaxStatementList = 200

// AccountReader is the read-only view of account records used by ingestion.
type AccountReader interface {
	// ListAccounts returns records ordered by createdAt then syncId ascending.
	ListAccounts(ctx context.Context, includeDeleted bool) ([]*model.AccountRecord, error)
}

// AccountStore persists account records under last-writer-wins.
type AccountStore interface {
	AccountReader

	// UpsertAccount inserts rec when absent, or overwrites every field except
	// createdAt when rec.UpdatedAt is strictly greater than the stored value.
	// applied reports whether anything was written.
	UpsertAccount(ctx context.Context, rec *model.AccountRecord) (applied bool, err error)
	GetAccount(ctx context.Context, syncID string) (*model.AccountRecord, error)
	// ListAccountsUpdatedSince returns every record, deleted ones included,
	// with updatedAt > since, newest first.
	ListAccountsUpdatedSince(ctx context.Context, since int64) ([]*model.AccountRecord, error)
	// SoftDeleteAccount marks a record deleted and advances updatedAt to
	// max(at, stored+1) so the change propagates through the delta.
	SoftDeleteAccount(ctx context.Context, syncID string, at int64) (*model.AccountRecord, error)
}

// StatementFilter narrows ListStatements.
type StatementFilter struct {
	AccountSyncID string
	// Unassigned selects statements whose account link was left empty.
	Unassigned bool
	Limit      int
}

// StatementStore persists extracted statements keyed by mail message ID.
type StatementStore interface {
	// SaveStatement assigns stmt.ID and stores it. inserted is false, with a
	// nil error, when a statement with the same MailMessageID already exists.
	SaveStatement(ctx context.Context, stmt *model.Statement) (inserted bool, err error)
	// ListStatements returns statements newest fetchedAt first.
	ListStatements(ctx context.Context, filter StatementFilter) ([]*model.Statement, error)
}

// MailConfigStore holds the single mailbox configuration.
type MailConfigStore interface {
	// GetMailConfig returns ErrNotFound when nothing has been saved.
	GetMailConfig(ctx context.Context) (*model.MailConfig, error)
	SaveMailConfig(ctx context.Context, cfg *model.MailConfig) error
}

// Store defines the interface for all database operations used by the service
type Store interface {
	AccountStore
	StatementStore
	MailConfigStore
	Close() error
}

// statementLimit normalizes a requested list size.
func statementLimit(n int) int {
	if n <= 0 || n > MaxStatementList {
		return MaxStatementList
	}
	return n
}

// prepareStatement applies the invariants every backend enforces on save.
func prepareStatement(stmt *model.Statement) *model.Statement {
	c := stmt.Clone()
	c.RawContent = model.Excerpt(c.RawContent)
	if c.Currency == "" {
		c.Currency = model.DefaultCurrency
	}
	return c
}

// nextUpdatedAt is the soft-delete timestamp rule shared by backends.
func nextUpdatedAt(at, stored int64) int64 {
	if at > stored {
		return at
	}
	return stored + 1
}
