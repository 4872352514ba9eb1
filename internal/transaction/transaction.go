package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/classify"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/merchant"
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrAlreadyProcessed = errors.New("message already processed")
)

// Channel is where an ingestion event came from.
type Channel string

const (
	ChannelUpload Channel = "upload"
	ChannelSMS    Channel = "sms"
	ChannelEmail  Channel = "email"
	ChannelManual Channel = "manual"
)

// Confirmed reports whether records from this channel are trusted without review.
// Only OCR uploads need a human to look at them.
func (c Channel) Confirmed() bool {
	return c != ChannelUpload
}

const (
	DefaultCurrency    = "INR"
	maxMerchantNameLen = 255
)

// Source records one ingestion event. Only Processed/ProcessedAt change after creation.
type Source struct {
	ID                   uuid.UUID
	Owner                account.Owner
	Channel              Channel
	ExternalID           string // mailbox message id
	Filename             string
	Text                 string
	ExtractionConfidence float64
	Processed            bool
	ProcessedAt          *time.Time
	ReceivedAt           time.Time
	CreatedAt            time.Time
}

// Transaction is the canonical record produced from a Source.
type Transaction struct {
	ID                       uuid.UUID
	Owner                    account.Owner
	SourceID                 uuid.UUID
	MerchantID               uuid.UUID
	Amount                   decimal.Decimal
	Currency                 string
	MerchantNameRaw          string
	Category                 string
	ClassificationConfidence float64
	ExtractionConfidence     float64
	Network                  extract.Network
	Direction                extract.Direction
	ReferenceID              string
	Date                     time.Time
	Channel                  Channel
	Confirmed                bool
	Metadata                 map[string]any
	CreatedAt                time.Time
}

type AssembleParams struct {
	Source               *Source
	Resolution           *merchant.Resolution
	Candidate            extract.Candidate
	Classification       classify.Result
	RawName              string
	ExtractionConfidence float64
	Date                 time.Time
	Metadata             map[string]any
}

// Assemble builds the transaction for a source and its resolved merchant.
func Assemble(p AssembleParams) *Transaction {
	meta := make(map[string]any, len(p.Metadata)+6)
	for k, v := range p.Metadata {
		meta[k] = v
	}

	meta["extraction_method"] = string(p.Candidate.Method)

	if p.Candidate.Handle != "" {
		meta["payment_handle"] = p.Candidate.Handle
	}

	if p.Candidate.MaskedAccount != "" {
		meta["account_number"] = p.Candidate.MaskedAccount
	}

	if p.Candidate.Balance != nil {
		meta["balance"] = p.Candidate.Balance.String()
	}

	if p.Classification.Reasoning != "" {
		meta["classification_reasoning"] = p.Classification.Reasoning
	}

	if p.Resolution.Suggestion != nil {
		meta["merchant_suggestion"] = p.Resolution.Suggestion.NormalizedName
	}

	network := p.Candidate.Network
	if network == "" {
		network = extract.NetworkUnknown
	}

	direction := p.Candidate.Direction
	if direction == "" {
		direction = extract.Debit
	}

	return &Transaction{
		Owner:                    p.Source.Owner,
		SourceID:                 p.Source.ID,
		MerchantID:               p.Resolution.Merchant.ID,
		Amount:                   extract.RoundAmount(p.Candidate.Amount),
		Currency:                 DefaultCurrency,
		MerchantNameRaw:          truncate(p.RawName, maxMerchantNameLen),
		Category:                 p.Classification.Category,
		ClassificationConfidence: p.Classification.Confidence,
		ExtractionConfidence:     p.ExtractionConfidence,
		Network:                  network,
		Direction:                direction,
		ReferenceID:              p.Candidate.ReferenceID,
		Date:                     p.Date,
		Channel:                  p.Source.Channel,
		Confirmed:                p.Source.Channel.Confirmed(),
		Metadata:                 meta,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
