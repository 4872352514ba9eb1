package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
	"github.com/MrJamesThe3rd/lumen/internal/validation"
)

// ManualEntry is a transaction typed in by the owner. Business owners may use the
// cheque and netbanking methods and record tax and payment terms.
type ManualEntry struct {
	Amount        decimal.Decimal   `json:"amount"`
	Party         string            `json:"party" validate:"required,max=255"`
	Purpose       string            `json:"purpose" validate:"max=500"`
	Date          time.Time         `json:"date"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card upi wallet cheque netbanking"`
	Category      string            `json:"category" validate:"max=100"`
	Reference     string            `json:"reference" validate:"max=255"`
	Direction     extract.Direction `json:"direction" validate:"omitempty,oneof=debit credit"`
	GSTAmount     *decimal.Decimal  `json:"gst_amount"`
	PaymentTerms  string            `json:"payment_terms" validate:"max=255"`
}

var consumerMethods = map[string]bool{"cash": true, "card": true, "upi": true, "wallet": true}

func (m *ManualEntry) Validate(t account.Type) error {
	m.Party = strings.TrimSpace(m.Party)
	m.PaymentMethod = strings.ToLower(strings.TrimSpace(m.PaymentMethod))

	if err := validation.Struct(m); err != nil {
		return err
	}

	m.Amount = extract.RoundAmount(m.Amount)

	if !m.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be greater than 0"}
	}

	if t == account.TypeConsumer && !consumerMethods[m.PaymentMethod] {
		return &ValidationError{Field: "payment_method", Message: "payment_method must be one of [cash card upi wallet]"}
	}

	if m.GSTAmount != nil && m.GSTAmount.IsNegative() {
		return &ValidationError{Field: "gst_amount", Message: "gst_amount must not be negative"}
	}

	return nil
}

func (m *ManualEntry) candidate() extract.Candidate {
	direction := m.Direction
	if direction == "" {
		direction = extract.Debit
	}

	return extract.Candidate{
		Amount:       m.Amount,
		Counterparty: m.Party,
		Network:      manualNetwork(m.PaymentMethod),
		ReferenceID:  strings.TrimSpace(m.Reference),
		Direction:    direction,
		Method:       extract.MethodManual,
	}
}

func (m *ManualEntry) metadata(t account.Type) map[string]any {
	meta := map[string]any{
		"manual_entry":   true,
		"entry_type":     string(t),
		"payment_method": m.PaymentMethod,
	}

	setIfPresent(meta, "purpose", m.Purpose)
	setIfPresent(meta, "payment_terms", m.PaymentTerms)

	if m.GSTAmount != nil {
		meta["gst_amount"] = m.GSTAmount.String()
	}

	return meta
}

func manualNetwork(method string) extract.Network {
	if n := extract.ParseNetwork(method); n != extract.NetworkUnknown {
		return n
	}

	return extract.NetworkCash
}
