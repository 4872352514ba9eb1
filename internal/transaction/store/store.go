package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	merchantstore "github.com/MrJamesThe3rd/lumen/internal/merchant/store"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
)

const (
	uniqueViolation = "23505"
	savepointName   = "transaction_part"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) BeginIngest(ctx context.Context) (transaction.IngestTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &ingestTx{Store: merchantstore.New(dbTx), tx: dbTx}, nil
}

func (s *Store) IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_messages WHERE message_id = $1)`, messageID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking processed message: %w", err)
	}

	return exists, nil
}

func (s *Store) CountProcessedMessages(ctx context.Context) (int, error) {
	var n int

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting processed messages: %w", err)
	}

	return n, nil
}

// ingestTx scopes the merchant store and the source/transaction writes to one *sql.Tx.
type ingestTx struct {
	*merchantstore.Store
	tx *sql.Tx
}

func (itx *ingestTx) CreateSource(ctx context.Context, src *transaction.Source) error {
	query := `
		INSERT INTO sources (
			consumer_id, business_id, channel, external_id, filename, raw_text,
			extraction_confidence, processed, processed_at, received_at, created_at
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	consumerID, businessID := src.Owner.Columns()

	err := itx.tx.QueryRowContext(ctx, query,
		consumerID,
		businessID,
		src.Channel,
		src.ExternalID,
		src.Filename,
		src.Text,
		src.ExtractionConfidence,
		src.Processed,
		src.ProcessedAt,
		src.ReceivedAt,
	).Scan(&src.ID, &src.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting source: %w", err)
	}

	return nil
}

func (itx *ingestTx) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	meta, err := json.Marshal(tx.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query := `
		INSERT INTO transactions (
			consumer_id, business_id, source_id, merchant_id, amount, currency,
			merchant_name_raw, category, classification_confidence, extraction_confidence,
			payment_network, direction, reference_id, date, channel, confirmed, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14, $15, $16, $17, NOW())
		RETURNING id, created_at
	`

	consumerID, businessID := tx.Owner.Columns()

	err = itx.tx.QueryRowContext(ctx, query,
		consumerID,
		businessID,
		tx.SourceID,
		tx.MerchantID,
		tx.Amount,
		tx.Currency,
		tx.MerchantNameRaw,
		tx.Category,
		tx.ClassificationConfidence,
		tx.ExtractionConfidence,
		tx.Network,
		tx.Direction,
		tx.ReferenceID,
		tx.Date,
		tx.Channel,
		tx.Confirmed,
		meta,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

func (itx *ingestTx) MarkMessageProcessed(ctx context.Context, messageID string, transactionID uuid.UUID) error {
	_, err := itx.tx.ExecContext(ctx,
		`INSERT INTO processed_messages (message_id, transaction_id, processed_at) VALUES ($1, $2, NOW())`,
		messageID, transactionID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return transaction.ErrAlreadyProcessed
		}

		return fmt.Errorf("inserting processed message: %w", err)
	}

	return nil
}

func (itx *ingestTx) Savepoint(ctx context.Context) error {
	_, err := itx.tx.ExecContext(ctx, "SAVEPOINT "+savepointName)
	return err
}

func (itx *ingestTx) RollbackToSavepoint(ctx context.Context) error {
	_, err := itx.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointName)
	return err
}

func (itx *ingestTx) Commit() error   { return itx.tx.Commit() }
func (itx *ingestTx) Rollback() error { return itx.tx.Rollback() }
