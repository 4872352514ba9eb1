package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/ingest"
	"github.com/MrJamesThe3rd/lumen/internal/transaction"
)

type transactionResponse struct {
	ID                       uuid.UUID         `json:"id"`
	Amount                   decimal.Decimal   `json:"amount"`
	Currency                 string            `json:"currency"`
	Merchant                 string            `json:"merchant"`
	MerchantID               uuid.UUID         `json:"merchant_id"`
	Category                 string            `json:"category"`
	ClassificationConfidence float64           `json:"classification_confidence"`
	ExtractionConfidence     float64           `json:"extraction_confidence"`
	PaymentNetwork           extract.Network   `json:"payment_network"`
	Direction                extract.Direction `json:"direction"`
	ReferenceID              string            `json:"reference_id,omitempty"`
	Date                     time.Time         `json:"date"`
	Channel                  string            `json:"channel"`
	Confirmed                bool              `json:"confirmed"`
	Metadata                 map[string]any    `json:"metadata,omitempty"`
}

func toTransactionResponse(tx *transaction.Transaction) *transactionResponse {
	if tx == nil {
		return nil
	}

	return &transactionResponse{
		ID:                       tx.ID,
		Amount:                   tx.Amount,
		Currency:                 tx.Currency,
		Merchant:                 tx.MerchantNameRaw,
		MerchantID:               tx.MerchantID,
		Category:                 tx.Category,
		ClassificationConfidence: tx.ClassificationConfidence,
		ExtractionConfidence:     tx.ExtractionConfidence,
		PaymentNetwork:           tx.Network,
		Direction:                tx.Direction,
		ReferenceID:              tx.ReferenceID,
		Date:                     tx.Date,
		Channel:                  string(tx.Channel),
		Confirmed:                tx.Confirmed,
		Metadata:                 tx.Metadata,
	}
}

type extractionResponse struct {
	Amount     *decimal.Decimal `json:"amount"`
	Merchant   string           `json:"merchant,omitempty"`
	Confidence float64          `json:"confidence"`
}

type uploadResponse struct {
	Success     bool                 `json:"success"`
	SourceID    uuid.UUID            `json:"source_id"`
	Transaction *transactionResponse `json:"transaction"`
	Extraction  extractionResponse   `json:"extraction"`
	Message     string               `json:"message"`
}

func toUploadResponse(res *ingest.Result) uploadResponse {
	resp := uploadResponse{
		Success:     true,
		Transaction: toTransactionResponse(res.Transaction),
		Extraction:  extractionResponse{Merchant: res.Candidate.Counterparty},
	}

	if res.Source != nil {
		resp.SourceID = res.Source.ID
		resp.Extraction.Confidence = res.Source.ExtractionConfidence
	}

	if res.Candidate.HasAmount() {
		amount := res.Candidate.Amount
		resp.Extraction.Amount = &amount
	}

	switch {
	case res.Transaction != nil:
		resp.Message = "Receipt processed, transaction awaiting confirmation"
	case res.Candidate.HasAmount():
		resp.Message = "Receipt stored, transaction could not be created"
	default:
		resp.Message = "Receipt stored, no amount found"
	}

	return resp
}

type classificationResponse struct {
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence"`
	IsPayment  bool    `json:"is_payment"`
}

type webhookResponse struct {
	Success        bool                   `json:"success"`
	TransactionID  *uuid.UUID             `json:"transaction_id,omitempty"`
	SourceID       *uuid.UUID             `json:"source_id,omitempty"`
	Message        string                 `json:"message"`
	Classification classificationResponse `json:"classification"`
}

func toWebhookResponse(res *ingest.Result) webhookResponse {
	resp := webhookResponse{
		Success: true,
		Classification: classificationResponse{
			Category:   res.Classification.Category,
			Confidence: res.Classification.Confidence,
			IsPayment:  true,
		},
	}

	if res.Source != nil {
		resp.SourceID = &res.Source.ID
	}

	if tx := res.Transaction; tx != nil {
		resp.TransactionID = &tx.ID
		resp.Message = fmt.Sprintf("Transaction processed: %s - ₹%s", tx.MerchantNameRaw, tx.Amount.StringFixed(2))
	} else {
		resp.Message = "SMS stored without a transaction"
	}

	return resp
}

type manualResponse struct {
	Success     bool                 `json:"success"`
	Transaction *transactionResponse `json:"transaction"`
	Message     string               `json:"message"`
}

func toManualResponse(t account.Type, res *ingest.Result) manualResponse {
	msg := "Transaction logged successfully!"
	if t == account.TypeBusiness {
		msg = "Business transaction logged successfully!"
	}

	return manualResponse{
		Success:     true,
		Transaction: toTransactionResponse(res.Transaction),
		Message:     msg,
	}
}
