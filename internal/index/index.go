package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
)

// Embedding is the semantic vector stored for one transaction.
type Embedding struct {
	TransactionID uuid.UUID
	Owner         account.Owner
	Model         string
	Content       string
	Vector        []float32
}

//go:generate mockgen -source=index.go -destination=index_mock.go -package=index
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Repository interface {
	UpsertEmbedding(ctx context.Context, e *Embedding) error
}

type Service struct {
	embedder Embedder
	repo     Repository
	model    string
	log      zerolog.Logger
}

func NewService(embedder Embedder, repo Repository, model string, log zerolog.Logger) *Service {
	return &Service{embedder: embedder, repo: repo, model: model, log: log}
}

// Index embeds a committed transaction and replaces any earlier vector for it.
func (s *Service) Index(ctx context.Context, tx *transaction.Transaction, owner account.Owner) error {
	doc := Document(tx)

	vec, err := s.embedder.Embed(ctx, doc)
	if err != nil {
		return fmt.Errorf("embedding transaction %s: %w", tx.ID, err)
	}

	e := &Embedding{
		TransactionID: tx.ID,
		Owner:         owner,
		Model:         s.model,
		Content:       doc,
		Vector:        vec,
	}

	if err := s.repo.UpsertEmbedding(ctx, e); err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}

	s.log.Debug().Str("transaction_id", tx.ID.String()).Int("dims", len(vec)).Msg("transaction indexed")

	return nil
}

var documentKeys = []string{"purpose", "subject", "payment_handle"}

// Document renders the text that represents a transaction for retrieval.
func Document(tx *transaction.Transaction) string {
	parts := []string{
		tx.MerchantNameRaw,
		tx.Currency + " " + tx.Amount.StringFixed(2),
		string(tx.Direction),
		tx.Category,
		string(tx.Network),
		tx.Date.Format("2006-01-02"),
		"via " + string(tx.Channel),
	}

	if tx.ReferenceID != "" {
		parts = append(parts, "ref "+tx.ReferenceID)
	}

	for _, k := range documentKeys {
		if v, ok := tx.Metadata[k].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, " | ")
}
