package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/merchant"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	BeginIngest(ctx context.Context) (IngestTx, error)
	IsMessageProcessed(ctx context.Context, messageID string) (bool, error)
	CountProcessedMessages(ctx context.Context) (int, error)
}

// IngestTx is one ingestion event's unit of work. Merchant resolution runs inside it.
type IngestTx interface {
	merchant.Repository
	CreateSource(ctx context.Context, src *Source) error
	CreateTransaction(ctx context.Context, tx *Transaction) error
	MarkMessageProcessed(ctx context.Context, messageID string, transactionID uuid.UUID) error
	Savepoint(ctx context.Context) error
	RollbackToSavepoint(ctx context.Context) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

type RecordParams struct {
	Owner                account.Owner
	Channel              Channel
	ReceivedAt           time.Time
	ExternalID           string // enters the processed-message ledger on commit
	Filename             string
	Text                 string
	ExtractionConfidence float64

	// Candidate without an amount records the source alone.
	Candidate      *extract.Candidate
	Counterparty   string
	Variants       []string
	Classification classify.Result
	Date           time.Time
	Metadata       map[string]any

	// KeepSourceOnFailure commits the source alone when the transaction part fails.
	KeepSourceOnFailure bool
}

type RecordResult struct {
	Source      *Source
	Transaction *Transaction
	Merchant    *merchant.Resolution
	// Dropped is the error that cost the transaction when the source was kept.
	Dropped error
}

// Record persists a source and, when the candidate is usable, its merchant and
// transaction in one database transaction.
func (s *Service) Record(ctx context.Context, p RecordParams) (*RecordResult, error) {
	if err := p.Owner.Validate(); err != nil {
		return nil, err
	}

	dbTx, err := s.repo.BeginIngest(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning ingest: %w", err)
	}
	defer dbTx.Rollback()

	now := s.now().UTC()

	received := p.ReceivedAt
	if received.IsZero() {
		received = now
	}

	src := &Source{
		Owner:                p.Owner,
		Channel:              p.Channel,
		ExternalID:           p.ExternalID,
		Filename:             p.Filename,
		Text:                 p.Text,
		ExtractionConfidence: p.ExtractionConfidence,
		Processed:            true,
		ProcessedAt:          &now,
		ReceivedAt:           received,
	}

	if err := dbTx.CreateSource(ctx, src); err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}

	result := &RecordResult{Source: src}

	if p.Candidate != nil && p.Candidate.HasAmount() {
		if err := s.recordTransaction(ctx, dbTx, src, p, now, result); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing ingest: %w", err)
	}

	return result, nil
}

func (s *Service) recordTransaction(ctx context.Context, dbTx IngestTx, src *Source, p RecordParams, now time.Time, result *RecordResult) error {
	if p.KeepSourceOnFailure {
		if err := dbTx.Savepoint(ctx); err != nil {
			return fmt.Errorf("creating savepoint: %w", err)
		}
	}

	tx, resolution, err := s.assemble(ctx, dbTx, src, p, now)
	if err == nil {
		result.Transaction = tx
		result.Merchant = resolution

		return nil
	}

	if !p.KeepSourceOnFailure {
		return err
	}

	if rbErr := dbTx.RollbackToSavepoint(ctx); rbErr != nil {
		return fmt.Errorf("rolling back to savepoint: %w", rbErr)
	}

	s.log.Warn().Err(err).Str("source_id", src.ID.String()).Msg("keeping source without transaction")
	result.Dropped = err

	return nil
}

func (s *Service) assemble(ctx context.Context, dbTx IngestTx, src *Source, p RecordParams, now time.Time) (*Transaction, *merchant.Resolution, error) {
	name := strings.TrimSpace(p.Counterparty)
	if name == "" {
		name = "Unknown"
	}

	resolution, err := merchant.NewResolver(dbTx, s.log).Resolve(ctx, name, p.Owner, p.Variants...)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving merchant: %w", err)
	}

	date := p.Date
	if date.IsZero() {
		date = now
	}

	tx := Assemble(AssembleParams{
		Source:               src,
		Resolution:           resolution,
		Candidate:            *p.Candidate,
		Classification:       p.Classification,
		RawName:              name,
		ExtractionConfidence: p.ExtractionConfidence,
		Date:                 date,
		Metadata:             p.Metadata,
	})

	if err := dbTx.CreateTransaction(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("creating transaction: %w", err)
	}

	if p.ExternalID != "" {
		if err := dbTx.MarkMessageProcessed(ctx, p.ExternalID, tx.ID); err != nil {
			return nil, nil, fmt.Errorf("recording processed message: %w", err)
		}
	}

	return tx, resolution, nil
}

// IsProcessed reports whether a mailbox message already produced a committed transaction.
func (s *Service) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	return s.repo.IsMessageProcessed(ctx, messageID)
}

func (s *Service) ProcessedCount(ctx context.Context) (int, error) {
	return s.repo.CountProcessedMessages(ctx)
}
