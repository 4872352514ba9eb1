package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
	"github.com/MrJamesThe3rd/lumen/internal/validation"
)

// Upload is a scanned receipt or invoice.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SMS is a forwarded message envelope as produced by the phone-side forwarder.
type SMS struct {
	Raw string
}

// Email is one mailbox message reduced to its headers and body.
type Email struct {
	MessageID  string
	Subject    string
	Sender     string
	Body       string
	ReceivedAt time.Time
	Mailbox    string
}

// Reason explains why a signal produced no transaction.
type Reason string

const (
	ReasonNonPayment     Reason = "non-payment"
	ReasonNoAmount       Reason = "no-amount"
	ReasonNotTransaction Reason = "not-transaction"
)

type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) String() string {
	if r.Detail == "" {
		return string(r.Reason)
	}

	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func reject(reason Reason, detail string) *Rejection {
	return &Rejection{Reason: reason, Detail: detail}
}

// Normalized is a channel's output, ready for classification and persistence.
type Normalized struct {
	Candidate  extract.Candidate
	Text       string
	Confidence float64
	Date       time.Time
	Metadata   map[string]any
}

// Result describes the outcome of ingesting one signal. Rejection is set when nothing was
// persisted; Transaction is nil when only a source was recorded.
type Result struct {
	Source         *transaction.Source
	Transaction    *transaction.Transaction
	Candidate      extract.Candidate
	Classification classify.Result
	Rejection      *Rejection
}

func (r *Result) Rejected() bool {
	return r.Rejection != nil
}

// EmailPrompt is what the AI extractor sees of an email.
type EmailPrompt struct {
	Subject string
	Sender  string
	Body    string
}

// EmailVerdict is the AI extractor's structured answer.
type EmailVerdict struct {
	IsTransaction   bool            `json:"is_transaction"`
	Amount          decimal.Decimal `json:"amount"`
	Merchant        string          `json:"merchant"`
	TransactionType string          `json:"transaction_type"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	Confidence      float64         `json:"confidence"`
}

//go:generate mockgen -source=ingest.go -destination=ingest_mock.go -package=ingest
type TextExtractor interface {
	ExtractText(ctx context.Context, content []byte, mimeType string) (string, float64, error)
}

type EmailExtractor interface {
	ExtractEmail(ctx context.Context, prompt EmailPrompt) (*EmailVerdict, error)
}

type Indexer interface {
	Index(ctx context.Context, tx *transaction.Transaction, owner account.Owner) error
}

type Classifier interface {
	Classify(ctx context.Context, req classify.Request) classify.Result
}

type Recorder interface {
	Record(ctx context.Context, p transaction.RecordParams) (*transaction.RecordResult, error)
}

// ValidationError is returned for input the caller must fix.
type ValidationError = validation.Error
