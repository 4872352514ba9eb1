package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/merchant"
)

// Querier is satisfied by *sql.DB and *sql.Tx so the store can join an ingestion transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db    Querier
	types *pgtype.Map
}

func New(db Querier) *Store {
	return &Store{db: db, types: pgtype.NewMap()}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `id, consumer_id, business_id, normalized_name, name_variants, created_at`

func (s *Store) scanMerchant(row scanner) (*merchant.Merchant, error) {
	var (
		m                      merchant.Merchant
		consumerID, businessID *int64
	)

	if err := row.Scan(
		&m.ID, &consumerID, &businessID, &m.NormalizedName,
		s.types.SQLScanner(&m.NameVariants), &m.CreatedAt,
	); err != nil {
		return nil, err
	}

	m.Owner = account.FromColumns(consumerID, businessID)

	return &m, nil
}

func (s *Store) FindByName(ctx context.Context, owner account.Owner, name string) (*merchant.Merchant, error) {
	query := `SELECT ` + selectColumns + `
		FROM merchants
		WHERE consumer_id IS NOT DISTINCT FROM $1
		  AND business_id IS NOT DISTINCT FROM $2
		  AND (
			normalized_name = $3::text
			OR normalized_name ILIKE '%' || $4::text || '%' ESCAPE '\'
			OR strpos($3::text, normalized_name) > 0
		  )
		ORDER BY (normalized_name = $3::text) DESC, LENGTH(normalized_name) DESC, created_at ASC
		LIMIT 1`

	consumerID, businessID := owner.Columns()

	m, err := s.scanMerchant(s.db.QueryRowContext(ctx, query, consumerID, businessID, name, escapeLike(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, merchant.ErrNotFound
		}

		return nil, fmt.Errorf("finding merchant: %w", err)
	}

	return m, nil
}

func (s *Store) ListByOwner(ctx context.Context, owner account.Owner) ([]*merchant.Merchant, error) {
	query := `SELECT ` + selectColumns + `
		FROM merchants
		WHERE consumer_id IS NOT DISTINCT FROM $1
		  AND business_id IS NOT DISTINCT FROM $2
		ORDER BY normalized_name ASC`

	consumerID, businessID := owner.Columns()

	rows, err := s.db.QueryContext(ctx, query, consumerID, businessID)
	if err != nil {
		return nil, fmt.Errorf("listing merchants: %w", err)
	}
	defer rows.Close()

	var merchants []*merchant.Merchant

	for rows.Next() {
		m, err := s.scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning merchant: %w", err)
		}

		merchants = append(merchants, m)
	}

	return merchants, rows.Err()
}

func (s *Store) CreateMerchant(ctx context.Context, m *merchant.Merchant) error {
	query := `
		INSERT INTO merchants (consumer_id, business_id, normalized_name, name_variants, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	consumerID, businessID := m.Owner.Columns()

	err := s.db.QueryRowContext(ctx, query,
		consumerID,
		businessID,
		m.NormalizedName,
		m.NameVariants,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating merchant: %w", err)
	}

	return nil
}

func (s *Store) AddVariant(ctx context.Context, id uuid.UUID, variant string) error {
	query := `
		UPDATE merchants
		SET name_variants = array_append(name_variants, $2::text)
		WHERE id = $1 AND NOT ($2::text = ANY(name_variants))
	`

	if _, err := s.db.ExecContext(ctx, query, id, variant); err != nil {
		return fmt.Errorf("adding merchant variant: %w", err)
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
