package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	defaultIndexTimeout   = 30 * time.Second
)

type Service struct {
	recorder   Recorder
	classifier Classifier
	ocr        TextExtractor
	emails     EmailExtractor
	indexer    Indexer
	vocabulary classify.Vocabulary
	maxUpload  int64
	indexAfter time.Duration
	log        zerolog.Logger

	indexing sync.WaitGroup
}

type Option func(*Service)

func WithTextExtractor(ocr TextExtractor) Option {
	return func(s *Service) { s.ocr = ocr }
}

func WithEmailExtractor(ex EmailExtractor) Option {
	return func(s *Service) { s.emails = ex }
}

func WithIndexer(idx Indexer) Option {
	return func(s *Service) { s.indexer = idx }
}

func WithVocabulary(v classify.Vocabulary) Option {
	return func(s *Service) { s.vocabulary = v }
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) { s.maxUpload = n }
}

// WithIndexTimeout bounds each background indexing call.
func WithIndexTimeout(d time.Duration) Option {
	return func(s *Service) { s.indexAfter = d }
}

func NewService(recorder Recorder, classifier Classifier, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		recorder:   recorder,
		classifier: classifier,
		vocabulary: classify.DefaultVocabulary(),
		maxUpload:  DefaultMaxUploadBytes,
		indexAfter: defaultIndexTimeout,
		log:        log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IngestUpload always records a source for a valid upload. A transaction is added when
// an amount was found; failures past that point keep the source.
func (s *Service) IngestUpload(ctx context.Context, owner account.Owner, u Upload) (*Result, error) {
	mimeType, err := ValidateUpload(u, s.maxUpload)
	if err != nil {
		return nil, err
	}

	n := NormalizeUpload(ctx, s.ocr, u, mimeType, s.log)

	return s.record(ctx, owner, n, transaction.RecordParams{
		Channel:             transaction.ChannelUpload,
		Filename:            u.Filename,
		KeepSourceOnFailure: true,
	})
}

// IngestSMS parses a forwarded SMS. Non-payment and amountless messages are rejected
// without persisting anything.
func (s *Service) IngestSMS(ctx context.Context, owner account.Owner, sms SMS) (*Result, error) {
	n, rej := NormalizeSMS(sms)
	if rej != nil {
		s.log.Info().Str("reason", rej.String()).Msg("sms rejected")
		return &Result{Rejection: rej}, nil
	}

	return s.record(ctx, owner, n, transaction.RecordParams{Channel: transaction.ChannelSMS})
}

// IngestEmail turns one mailbox message into a transaction. The message id enters the
// processed-message ledger in the same database transaction.
func (s *Service) IngestEmail(ctx context.Context, owner account.Owner, e Email) (*Result, error) {
	n, rej := NormalizeEmail(ctx, s.emails, e, s.log)
	if rej != nil {
		s.log.Debug().Str("message_id", e.MessageID).Str("reason", rej.String()).Msg("email skipped")
		return &Result{Rejection: rej}, nil
	}

	return s.record(ctx, owner, n, transaction.RecordParams{
		Channel:    transaction.ChannelEmail,
		ExternalID: e.MessageID,
		ReceivedAt: e.ReceivedAt,
	})
}

func (s *Service) IngestManual(ctx context.Context, owner account.Owner, m ManualEntry) (*Result, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	if err := m.Validate(owner.Type); err != nil {
		return nil, err
	}

	c := m.candidate()

	cls := classify.Explicit(m.Category)
	if m.Category == "" {
		cls = s.classify(ctx, owner, Normalized{Candidate: c, Metadata: map[string]any{
			"purpose":          m.Purpose,
			"payment_method":   m.PaymentMethod,
			"transaction_type": string(c.Direction),
		}})
	}

	res, err := s.recorder.Record(ctx, transaction.RecordParams{
		Owner:                owner,
		Channel:              transaction.ChannelManual,
		Text:                 m.Purpose,
		ExtractionConfidence: 1,
		Candidate:            &c,
		Counterparty:         c.Counterparty,
		Classification:       cls,
		Date:                 m.Date,
		Metadata:             m.metadata(owner.Type),
	})
	if err != nil {
		return nil, fmt.Errorf("recording manual entry: %w", err)
	}

	return s.finish(ctx, owner, c, cls, res), nil
}

func (s *Service) record(ctx context.Context, owner account.Owner, n Normalized, p transaction.RecordParams) (*Result, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var cls classify.Result
	if n.Candidate.HasAmount() {
		cls = s.classify(ctx, owner, n)
	}

	p.Owner = owner
	p.Text = n.Text
	p.ExtractionConfidence = n.Confidence
	p.Candidate = &n.Candidate
	p.Counterparty = n.Candidate.Counterparty
	p.Classification = cls
	p.Date = n.Date
	p.Metadata = n.Metadata

	if n.Candidate.Handle != "" {
		p.Variants = []string{n.Candidate.Handle}
	}

	res, err := s.recorder.Record(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("recording %s: %w", p.Channel, err)
	}

	return s.finish(ctx, owner, n.Candidate, cls, res), nil
}

func (s *Service) classify(ctx context.Context, owner account.Owner, n Normalized) classify.Result {
	if s.classifier == nil {
		return classify.Result{Category: classify.Unknown}
	}

	fields := map[string]any{
		"payment_network": string(n.Candidate.Network),
		"direction":       string(n.Candidate.Direction),
	}

	if n.Candidate.Handle != "" {
		fields["payment_handle"] = n.Candidate.Handle
	}

	for k, v := range n.Metadata {
		if k != "raw_sms" {
			fields[k] = v
		}
	}

	return s.classifier.Classify(ctx, classify.Request{
		Counterparty: n.Candidate.Counterparty,
		Amount:       n.Candidate.Amount,
		Fields:       fields,
		Vocabulary:   s.vocabulary.For(owner.Type),
	})
}

func (s *Service) finish(ctx context.Context, owner account.Owner, c extract.Candidate, cls classify.Result, res *transaction.RecordResult) *Result {
	out := &Result{
		Source:         res.Source,
		Transaction:    res.Transaction,
		Candidate:      c,
		Classification: cls,
	}

	if res.Transaction != nil {
		s.index(ctx, res.Transaction, owner)
	}

	return out
}

// index runs detached from the request; failures are logged only.
func (s *Service) index(ctx context.Context, tx *transaction.Transaction, owner account.Owner) {
	if s.indexer == nil {
		return
	}

	s.indexing.Add(1)

	go func() {
		defer s.indexing.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.indexAfter)
		defer cancel()

		if err := s.indexer.Index(ctx, tx, owner); err != nil {
			s.log.Error().Err(err).Str("transaction_id", tx.ID.String()).Msg("indexing transaction")
		}
	}()
}

// Wait blocks until background indexing has drained.
func (s *Service) Wait() {
	s.indexing.Wait()
}
