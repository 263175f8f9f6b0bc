package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	cardsCollection      = "cards"
	statementsCollection = "billStatements"
	settingsCollection   = "settings"
	mailConfigDoc        = "emailConfig"
	statementCounterDoc  = "statementCounter"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client: client,
	}
}

// OpenFirestore creates a client for projectID. credentialsFile may be empty
// to use application default credentials or the emulator.
func OpenFirestore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return NewFirestoreStore(client), nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *FirestoreStore) UpsertAccount(ctx context.Context, rec *model.AccountRecord) (bool, error) {
	if rec == nil || rec.SyncID == "" {
		return false, fmt.Errorf("upsert card: sync id is required")
	}
	ref := s.client.Collection(cardsCollection).Doc(rec.SyncID)

	var applied bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		applied = false
		doc, err := tx.Get(ref)
		if err != nil && !isNotFound(err) {
			return err
		}
		next := rec.Clone()
		if err == nil && doc.Exists() {
			var stored model.AccountRecord
			if err := doc.DataTo(&stored); err != nil {
				return err
			}
			if !rec.Newer(&stored) {
				return nil
			}
			next.CreatedAt = stored.CreatedAt
		}
		applied = true
		return tx.Set(ref, next)
	})
	if err != nil {
		return false, fmt.Errorf("upsert card %s: %w", rec.SyncID, err)
	}
	return applied, nil
}

func (s *FirestoreStore) GetAccount(ctx context.Context, syncID string) (*model.AccountRecord, error) {
	doc, err := s.client.Collection(cardsCollection).Doc(syncID).Get(ctx)
	if isNotFound(err) {
		return nil, fmt.Errorf("card %s: %w", syncID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", syncID, err)
	}
	var rec model.AccountRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode card %s: %w", syncID, err)
	}
	return &rec, nil
}

func (s *FirestoreStore) ListAccounts(ctx context.Context, includeDeleted bool) ([]*model.AccountRecord, error) {
	query := s.client.Collection(cardsCollection).Query
	if !includeDeleted {
		query = query.Where("isDeleted", "==", false)
	}
	out, err := s.queryCards(ctx, query)
	if err != nil {
		return nil, err
	}
	// Sorted client side to avoid a composite index on (isDeleted, createdAt).
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].SyncID < out[j].SyncID
	})
	return out, nil
}

func (s *FirestoreStore) ListAccountsUpdatedSince(ctx context.Context, since int64) ([]*model.AccountRecord, error) {
	query := s.client.Collection(cardsCollection).
		Where("updatedAt", ">", since).
		OrderBy("updatedAt", firestore.Desc)
	return s.queryCards(ctx, query)
}

func (s *FirestoreStore) queryCards(ctx context.Context, query firestore.Query) ([]*model.AccountRecord, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	out := make([]*model.AccountRecord, 0, len(docs))
	for _, doc := range docs {
		var rec model.AccountRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode card %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *FirestoreStore) SoftDeleteAccount(ctx context.Context, syncID string, at int64) (*model.AccountRecord, error) {
	ref := s.client.Collection(cardsCollection).Doc(syncID)

	var result model.AccountRecord
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&result); err != nil {
			return err
		}
		result.IsDeleted = true
		result.UpdatedAt = nextUpdatedAt(at, result.UpdatedAt)
		return tx.Set(ref, &result)
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("card %s: %w", syncID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete card %s: %w", syncID, err)
	}
	return &result, nil
}

// statementDoc is the stored shape of a statement; decimals are kept as
// strings so no precision is lost.
type statementDoc struct {
	model.Statement
	Amount     string `firestore:"amount"`
	MinPayment string `firestore:"minPayment"`
}

func toStatementDoc(st *model.Statement) *statementDoc {
	d := &statementDoc{Statement: *st}
	if st.Amount != nil {
		d.Amount = st.Amount.String()
	}
	if st.MinPayment != nil {
		d.MinPayment = st.MinPayment.String()
	}
	return d
}

func (d *statementDoc) toModel() (*model.Statement, error) {
	st := d.Statement
	for _, f := range []struct {
		raw string
		dst **decimal.Decimal
	}{{d.Amount, &st.Amount}, {d.MinPayment, &st.MinPayment}} {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, err
		}
		*f.dst = &v
	}
	return &st, nil
}

// statementDocID keeps document IDs within Firestore's character rules
// regardless of what a Message-ID contains.
func statementDocID(mailMessageID string) string {
	sum := sha256.Sum256([]byte(mailMessageID))
	return hex.EncodeToString(sum[:])
}

func (s *FirestoreStore) SaveStatement(ctx context.Context, stmt *model.Statement) (bool, error) {
	if stmt == nil || stmt.MailMessageID == "" {
		return false, fmt.Errorf("save statement: mail message id is required")
	}
	ref := s.client.Collection(statementsCollection).Doc(statementDocID(stmt.MailMessageID))
	counter := s.client.Collection(settingsCollection).Doc(statementCounterDoc)

	var inserted bool
	var id int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		inserted = false
		existing, err := tx.Get(ref)
		if err == nil && existing.Exists() {
			var d statementDoc
			if err := existing.DataTo(&d); err != nil {
				return err
			}
			id = d.ID
			return nil
		}
		if err != nil && !isNotFound(err) {
			return err
		}

		var next int64 = 1
		cdoc, err := tx.Get(counter)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err == nil && cdoc.Exists() {
			if v, err := cdoc.DataAt("next"); err == nil {
				if n, ok := v.(int64); ok {
					next = n
				}
			}
		}

		c := prepareStatement(stmt)
		c.ID = next
		if err := tx.Set(counter, map[string]any{"next": next + 1}); err != nil {
			return err
		}
		if err := tx.Create(ref, toStatementDoc(c)); err != nil {
			return err
		}
		id = next
		inserted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("save statement %s: %w", stmt.MailMessageID, err)
	}
	stmt.ID = id
	return inserted, nil
}

func (s *FirestoreStore) ListStatements(ctx context.Context, filter StatementFilter) ([]*model.Statement, error) {
	query := s.client.Collection(statementsCollection).Query
	switch {
	case filter.AccountSyncID != "":
		query = query.Where("cardSyncId", "==", filter.AccountSyncID)
	case filter.Unassigned:
		query = query.Where("cardSyncId", "==", "")
	}
	query = query.OrderBy("fetchedAt", firestore.Desc).Limit(statementLimit(filter.Limit))

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	out := make([]*model.Statement, 0, len(docs))
	for _, doc := range docs {
		var d statementDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode statement %s: %w", doc.Ref.ID, err)
		}
		st, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode statement %s: %w", doc.Ref.ID, err)
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *FirestoreStore) GetMailConfig(ctx context.Context) (*model.MailConfig, error) {
	doc, err := s.client.Collection(settingsCollection).Doc(mailConfigDoc).Get(ctx)
	if isNotFound(err) {
		return nil, fmt.Errorf("mail config: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get mail config: %w", err)
	}
	var cfg model.MailConfig
	if err := doc.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("decode mail config: %w", err)
	}
	return &cfg, nil
}

func (s *FirestoreStore) SaveMailConfig(ctx context.Context, cfg *model.MailConfig) error {
	if _, err := s.client.Collection(settingsCollection).Doc(mailConfigDoc).Set(ctx, cfg); err != nil {
		return fmt.Errorf("save mail config: %w", err)
	}
	return nil
}
