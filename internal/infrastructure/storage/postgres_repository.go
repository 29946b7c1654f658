package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ASongADay/internal/domain"
	"ASongADay/internal/ports"
)

// ErrNoCredential is returned when nothing has been persisted yet.
var ErrNoCredential = errors.New("no credential stored")

// PostgresCredentialStore keeps the current credential as a JSON payload,
// one row per account.
type PostgresCredentialStore struct {
	db      *sql.DB
	table   string
	account string
	builder sq.StatementBuilderType
}

var _ ports.CredentialSink = (*PostgresCredentialStore)(nil)

// OpenPostgres opens a database handle with the pq driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewPostgresCredentialStore wires a sql.DB implementation.
func NewPostgresCredentialStore(db *sql.DB, table, account string) *PostgresCredentialStore {
	if table == "" {
		table = "credentials"
	}
	if account == "" {
		account = "default"
	}
	return &PostgresCredentialStore{
		db:      db,
		table:   pq.QuoteIdentifier(table),
		account: account,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the credential table when missing.
func (r *PostgresCredentialStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
              account TEXT PRIMARY KEY,
              payload JSONB NOT NULL,
              updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create credential table: %w", err)
	}
	return nil
}

// Load returns the credential stored for the account.
func (r *PostgresCredentialStore) Load(ctx context.Context) (domain.Credential, error) {
	query, args, err := r.builder.
		Select("payload").
		From(r.table).
		Where(sq.Eq{"account": r.account}).
		ToSql()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("build select: %w", err)
	}

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Credential{}, fmt.Errorf("account %s: %w", r.account, ErrNoCredential)
		}
		return domain.Credential{}, fmt.Errorf("query credential: %w", err)
	}

	return domain.DecodeCredential(payload)
}

// Save replaces the stored credential.
func (r *PostgresCredentialStore) Save(ctx context.Context, cred domain.Credential) error {
	payload, err := domain.EncodeCredential(cred)
	if err != nil {
		return err
	}

	query, args, err := r.builder.
		Insert(r.table).
		Columns("account", "payload", "updated_at").
		Values(r.account, string(payload), sq.Expr("NOW()")).
		Suffix(`ON CONFLICT (account) DO UPDATE
              SET payload = EXCLUDED.payload,
                  updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}
