package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/castlemilk/cardkeeper/internal/model"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	accounts       map[string]*model.AccountRecord
	statements     []*model.Statement
	statementByMID map[string]int64
	nextStatement  int64
	mailConfig     *model.MailConfig
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:       make(map[string]*model.AccountRecord),
		statementByMID: make(map[string]int64),
	}
}

func (s *MemoryStore) UpsertAccount(ctx context.Context, rec *model.AccountRecord) (bool, error) {
	if rec == nil || rec.SyncID == "" {
		return false, fmt.Errorf("upsert card: sync id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[rec.SyncID]
	if !ok {
		s.accounts[rec.SyncID] = rec.Clone()
		return true, nil
	}
	if !rec.Newer(stored) {
		return false, nil
	}
	rec.Clone().MergeInto(stored)
	return true, nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, syncID string) (*model.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[syncID]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", syncID, ErrNotFound)
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) ListAccounts(ctx context.Context, includeDeleted bool) ([]*model.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.AccountRecord, 0, len(s.accounts))
	for _, rec := range s.accounts {
		if rec.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].SyncID < out[j].SyncID
	})
	return out, nil
}

func (s *MemoryStore) ListAccountsUpdatedSince(ctx context.Context, since int64) ([]*model.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.AccountRecord, 0)
	for _, rec := range s.accounts {
		if rec.UpdatedAt > since {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].SyncID < out[j].SyncID
	})
	return out, nil
}

func (s *MemoryStore) SoftDeleteAccount(ctx context.Context, syncID string, at int64) (*model.AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[syncID]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", syncID, ErrNotFound)
	}
	rec.IsDeleted = true
	rec.UpdatedAt = nextUpdatedAt(at, rec.UpdatedAt)
	return rec.Clone(), nil
}

func (s *MemoryStore) SaveStatement(ctx context.Context, stmt *model.Statement) (bool, error) {
	if stmt == nil || stmt.MailMessageID == "" {
		return false, fmt.Errorf("save statement: mail message id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.statementByMID[stmt.MailMessageID]; ok {
		stmt.ID = id
		return false, nil
	}
	s.nextStatement++
	c := prepareStatement(stmt)
	c.ID = s.nextStatement
	s.statements = append(s.statements, c)
	s.statementByMID[c.MailMessageID] = c.ID
	stmt.ID = c.ID
	return true, nil
}

func (s *MemoryStore) ListStatements(ctx context.Context, filter StatementFilter) ([]*model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Statement, 0)
	for _, stmt := range s.statements {
		if filter.AccountSyncID != "" && stmt.AccountSyncID != filter.AccountSyncID {
			continue
		}
		if filter.Unassigned && stmt.AccountSyncID != "" {
			continue
		}
		out = append(out, stmt.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FetchedAt != out[j].FetchedAt {
			return out[i].FetchedAt > out[j].FetchedAt
		}
		return out[i].ID > out[j].ID
	})
	if limit := statementLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetMailConfig(ctx context.Context) (*model.MailConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.mailConfig == nil {
		return nil, fmt.Errorf("mail config: %w", ErrNotFound)
	}
	c := *s.mailConfig
	return &c, nil
}

func (s *MemoryStore) SaveMailConfig(ctx context.Context, cfg *model.MailConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *cfg
	s.mailConfig = &c
	return nil
}

func (s *MemoryStore) Close() error { return nil }
