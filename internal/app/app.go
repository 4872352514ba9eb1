// Package app assembles the ingestion pipeline from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/ai"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
	"github.com/MrJamesThe3rd/lumen/internal/config"
	credentialstore "github.com/MrJamesThe3rd/lumen/internal/credential/store"
	"github.com/MrJamesThe3rd/lumen/internal/gmail"
	"github.com/MrJamesThe3rd/lumen/internal/index"
	indexstore "github.com/MrJamesThe3rd/lumen/internal/index/store"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
	"github.com/MrJamesThe3rd/lumen/internal/poller"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
	txstore "github.com/MrJamesThe3rd/lumen/internal/transaction/store"
)

type App struct {
	Transactions *transaction.Service
	Ingest       *ingest.Service
	Connector    *gmail.Connector
	Poller       *poller.Poller
}

// New wires every service against db. Without a Gemini key the pipeline runs on
// rules alone: no OCR, no email extraction, no classification and no indexing.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, log zerolog.Logger) (*App, error) {
	vocabulary := classify.DefaultVocabulary()

	if cfg.Ingest.VocabularyFile != "" {
		v, err := classify.LoadVocabulary(cfg.Ingest.VocabularyFile)
		if err != nil {
			return nil, err
		}

		vocabulary = v
	}

	transactions := transaction.NewService(txstore.New(db), log.With().Str("component", "transaction").Logger())

	opts := []ingest.Option{
		ingest.WithVocabulary(vocabulary),
		ingest.WithMaxUploadBytes(cfg.Ingest.MaxUploadBytes),
		ingest.WithIndexTimeout(cfg.Ingest.IndexTimeout),
	}

	var classifier *classify.Adapter

	classifyOpts := []classify.Option{
		classify.WithTimeout(cfg.Ingest.ClassifyTimeout),
		classify.WithMinConfidence(cfg.Ingest.MinConfidence),
	}

	if cfg.Gemini.APIKey != "" {
		client, err := ai.New(ctx, ai.Config{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			EmbeddingModel: cfg.Gemini.EmbeddingModel,
		}, log.With().Str("component", "ai").Logger())
		if err != nil {
			return nil, fmt.Errorf("building gemini client: %w", err)
		}

		indexer := index.NewService(client, indexstore.New(db), client.EmbeddingModel(), log.With().Str("component", "index").Logger())

		opts = append(opts,
			ingest.WithTextExtractor(client),
			ingest.WithEmailExtractor(client),
			ingest.WithIndexer(indexer),
		)

		classifier = classify.NewAdapter(client, log.With().Str("component", "classify").Logger(), classifyOpts...)
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, running without OCR, extraction assist or classification")

		classifier = classify.NewAdapter(nil, log, classifyOpts...)
	}

	svc := ingest.NewService(transactions, classifier, log.With().Str("component", "ingest").Logger(), opts...)

	connector := gmail.NewConnector(gmail.Config{
		ClientID:       cfg.Gmail.ClientID,
		ClientSecret:   cfg.Gmail.ClientSecret,
		RedirectURL:    cfg.Gmail.RedirectURL,
		MonitoredEmail: cfg.Gmail.MonitoredEmail,
		Identity:       cfg.Gmail.Identity,
	}, credentialstore.New(db), log.With().Str("component", "gmail").Logger())

	p := poller.New(connector, svc, transactions, log.With().Str("component", "poller").Logger(),
		poller.WithInterval(cfg.Gmail.PollInterval),
	)

	return &App{
		Transactions: transactions,
		Ingest:       svc,
		Connector:    connector,
		Poller:       p,
	}, nil
}
