package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/lumen/internal/index"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertEmbedding(ctx context.Context, e *index.Embedding) error {
	query := `
		INSERT INTO transaction_embeddings (transaction_id, consumer_id, business_id, model, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (transaction_id) DO UPDATE
		SET model = EXCLUDED.model,
		    content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding,
		    created_at = NOW()
	`

	consumerID, businessID := e.Owner.Columns()

	if _, err := s.db.ExecContext(ctx, query,
		e.TransactionID,
		consumerID,
		businessID,
		e.Model,
		e.Content,
		e.Vector,
	); err != nil {
		return fmt.Errorf("upserting embedding: %w", err)
	}

	return nil
}
