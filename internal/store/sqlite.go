package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DefaultDBFile is the database file name inside the data directory.
const DefaultDBFile = "cards.db"

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) dataDir/cards.db and applies
// migrations.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, DefaultDBFile)

	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// runMigrations uses its own connection; the sqlite3 migrate driver closes
// the handle it is given.
func runMigrations(path string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const cardColumns = `sync_id, name, bank, card_number, cvv, expiry_date, cardholder_name,
	credit_limit, billing_day, payment_due_day, color, card_front_image, card_back_image,
	notes, iv, owner, last_four, is_deleted, created_at, updated_at`

func (s *SQLiteStore) UpsertAccount(ctx context.Context, rec *model.AccountRecord) (bool, error) {
	if rec == nil || rec.SyncID == "" {
		return false, fmt.Errorf("upsert card: sync id is required")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sync_id) DO UPDATE SET
			name = excluded.name,
			bank = excluded.bank,
			card_number = excluded.card_number,
			cvv = excluded.cvv,
			expiry_date = excluded.expiry_date,
			cardholder_name = excluded.cardholder_name,
			credit_limit = excluded.credit_limit,
			billing_day = excluded.billing_day,
			payment_due_day = excluded.payment_due_day,
			color = excluded.color,
			card_front_image = excluded.card_front_image,
			card_back_image = excluded.card_back_image,
			notes = excluded.notes,
			iv = excluded.iv,
			owner = excluded.owner,
			last_four = excluded.last_four,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at > cards.updated_at`,
		rec.SyncID, rec.DisplayName, rec.BankName, rec.CardNumber, rec.CVV, rec.ExpiryDate,
		rec.HolderName, rec.CreditLimit, rec.BillingDay, rec.PaymentDueDay, rec.ColorTag,
		rec.FrontImage, rec.BackImage, rec.Notes, rec.IV, rec.OwnerLabel, rec.LastFourDigits,
		boolToInt(rec.IsDeleted), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert card %s: %w", rec.SyncID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert card %s: %w", rec.SyncID, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, syncID string) (*model.AccountRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE sync_id = ?`, syncID)
	rec, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", syncID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", syncID, err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListAccounts(ctx context.Context, includeDeleted bool) ([]*model.AccountRecord, error) {
	q := `SELECT ` + cardColumns + ` FROM cards`
	if !includeDeleted {
		q += ` WHERE is_deleted = 0`
	}
	q += ` ORDER BY created_at ASC, sync_id ASC`
	return s.queryCards(ctx, q)
}

func (s *SQLiteStore) ListAccountsUpdatedSince(ctx context.Context, since int64) ([]*model.AccountRecord, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE updated_at > ? ORDER BY updated_at DESC, sync_id ASC`, since)
}

func (s *SQLiteStore) SoftDeleteAccount(ctx context.Context, syncID string, at int64) (*model.AccountRecord, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cards SET is_deleted = 1,
			updated_at = CASE WHEN ? > updated_at THEN ? ELSE updated_at + 1 END
		WHERE sync_id = ?`, at, at, syncID)
	if err != nil {
		return nil, fmt.Errorf("delete card %s: %w", syncID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("card %s: %w", syncID, ErrNotFound)
	}
	return s.GetAccount(ctx, syncID)
}

func (s *SQLiteStore) queryCards(ctx context.Context, q string, args ...any) ([]*model.AccountRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	out := make([]*model.AccountRecord, 0)
	for rows.Next() {
		rec, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(sc scanner) (*model.AccountRecord, error) {
	var rec model.AccountRecord
	var deleted int
	err := sc.Scan(&rec.SyncID, &rec.DisplayName, &rec.BankName, &rec.CardNumber, &rec.CVV,
		&rec.ExpiryDate, &rec.HolderName, &rec.CreditLimit, &rec.BillingDay, &rec.PaymentDueDay,
		&rec.ColorTag, &rec.FrontImage, &rec.BackImage, &rec.Notes, &rec.IV, &rec.OwnerLabel,
		&rec.LastFourDigits, &deleted, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.IsDeleted = deleted != 0
	return &rec, nil
}

const statementColumns = `id, card_sync_id, mail_message_id, email_uid, bank, amount, currency,
	bill_date, due_date, min_payment, statement_type, matched_by, match_confidence,
	raw_content, fetched_at`

func (s *SQLiteStore) SaveStatement(ctx context.Context, stmt *model.Statement) (bool, error) {
	if stmt == nil || stmt.MailMessageID == "" {
		return false, fmt.Errorf("save statement: mail message id is required")
	}
	c := prepareStatement(stmt)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bill_statements (card_sync_id, mail_message_id, email_uid, bank, amount,
			currency, bill_date, due_date, min_payment, statement_type, matched_by,
			match_confidence, raw_content, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mail_message_id) DO NOTHING`,
		c.AccountSyncID, c.MailMessageID, c.MailUID, c.BankName, decimalValue(c.Amount),
		c.Currency, c.StatementDate, c.DueDate, decimalValue(c.MinPayment), string(c.Format),
		string(c.MatchedBy), string(c.MatchConfidence), c.RawContent, c.FetchedAt,
	)
	if err != nil {
		return false, fmt.Errorf("save statement %s: %w", c.MailMessageID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save statement %s: %w", c.MailMessageID, err)
	}
	if n == 0 {
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM bill_statements WHERE mail_message_id = ?`, c.MailMessageID).Scan(&stmt.ID)
		if err != nil {
			return false, fmt.Errorf("lookup statement %s: %w", c.MailMessageID, err)
		}
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("save statement %s: %w", c.MailMessageID, err)
	}
	stmt.ID = id
	return true, nil
}

func (s *SQLiteStore) ListStatements(ctx context.Context, filter StatementFilter) ([]*model.Statement, error) {
	var where []string
	var args []any
	if filter.AccountSyncID != "" {
		where = append(where, "card_sync_id = ?")
		args = append(args, filter.AccountSyncID)
	}
	if filter.Unassigned {
		where = append(where, "card_sync_id = ''")
	}
	q := `SELECT ` + statementColumns + ` FROM bill_statements`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY fetched_at DESC, id DESC LIMIT ?`
	args = append(args, statementLimit(filter.Limit))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Statement, 0)
	for rows.Next() {
		var st model.Statement
		var amount, minPay sql.NullString
		var format, matchedBy, confidence string
		if err := rows.Scan(&st.ID, &st.AccountSyncID, &st.MailMessageID, &st.MailUID, &st.BankName,
			&amount, &st.Currency, &st.StatementDate, &st.DueDate, &minPay, &format, &matchedBy,
			&confidence, &st.RawContent, &st.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		st.Format = model.StatementFormat(format)
		st.MatchedBy = model.MatchMethod(matchedBy)
		st.MatchConfidence = model.Confidence(confidence)
		if st.Amount, err = parseDecimal(amount); err != nil {
			return nil, fmt.Errorf("statement %d amount: %w", st.ID, err)
		}
		if st.MinPayment, err = parseDecimal(minPay); err != nil {
			return nil, fmt.Errorf("statement %d min payment: %w", st.ID, err)
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetMailConfig(ctx context.Context) (*model.MailConfig, error) {
	var cfg model.MailConfig
	err := s.db.QueryRowContext(ctx,
		`SELECT email, password, imap_host, updated_at FROM email_config WHERE id = 1`).
		Scan(&cfg.Email, &cfg.Password, &cfg.IMAPHost, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mail config: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get mail config: %w", err)
	}
	return &cfg, nil
}

func (s *SQLiteStore) SaveMailConfig(ctx context.Context, cfg *model.MailConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_config (id, email, password, imap_host, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			password = excluded.password,
			imap_host = excluded.imap_host,
			updated_at = excluded.updated_at`,
		cfg.Email, cfg.Password, cfg.IMAPHost, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save mail config: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func decimalValue(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
