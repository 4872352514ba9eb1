package ingest

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/encoding"
	"github.com/MrJamesThe3rd/lumen/internal/extract"
)

const (
	emailPromptRunes     = 2000
	minEmailConfidence   = 0.6
	bankTransactionParty = "Bank Transaction"
)

var (
	bankSenders = []string{"bank", "icici", "hdfc", "sbi", "axis", "kotak"}

	errNoExtractor = errors.New("no email extractor configured")
)

// NormalizeEmail decides whether an email reports a transaction. The AI verdict is
// preferred; rule extraction over subject and body is the fallback when the extractor
// is missing or fails.
func NormalizeEmail(ctx context.Context, ex EmailExtractor, e Email, log zerolog.Logger) (Normalized, *Rejection) {
	body := e.Body
	if encoding.LooksLikeHTML(body) {
		body = encoding.PlainText(body)
	}

	if !extract.HasEmailKeywords(e.Subject, body) {
		return Normalized{}, reject(ReasonNotTransaction, "no transaction keywords")
	}

	var (
		c   extract.Candidate
		rej *Rejection
	)

	verdict, err := extractEmail(ctx, ex, e, body)
	if err != nil {
		if !errors.Is(err, errNoExtractor) {
			log.Warn().Err(err).Str("message_id", e.MessageID).Msg("AI email extraction failed, falling back to rules")
		}

		c, rej = fallbackEmail(e, body)
	} else {
		c, rej = acceptVerdict(verdict, e.Sender)
	}

	if rej != nil {
		return Normalized{}, rej
	}

	meta := map[string]any{
		"subject":          e.Subject,
		"sender":           e.Sender,
		"transaction_type": string(c.Direction),
		"auto_ingested":    true,
	}

	setIfPresent(meta, "monitored_email", e.Mailbox)

	if verdict != nil {
		meta["ai_confidence"] = verdict.Confidence
	}

	return Normalized{
		Candidate:  c,
		Text:       e.Subject + "\n" + body,
		Confidence: 1,
		Date:       e.ReceivedAt,
		Metadata:   meta,
	}, nil
}

func extractEmail(ctx context.Context, ex EmailExtractor, e Email, body string) (*EmailVerdict, error) {
	if ex == nil {
		return nil, errNoExtractor
	}

	return ex.ExtractEmail(ctx, EmailPrompt{
		Subject: e.Subject,
		Sender:  e.Sender,
		Body:    truncateRunes(body, emailPromptRunes),
	})
}

func acceptVerdict(v *EmailVerdict, sender string) (extract.Candidate, *Rejection) {
	switch {
	case !v.IsTransaction:
		return extract.Candidate{}, reject(ReasonNotTransaction, "extractor says not a transaction")
	case v.Confidence < minEmailConfidence:
		return extract.Candidate{}, reject(ReasonNotTransaction, "low extraction confidence")
	case !extract.RoundAmount(v.Amount).IsPositive():
		return extract.Candidate{}, reject(ReasonNotTransaction, "no amount")
	}

	direction := extract.Debit
	if strings.EqualFold(strings.TrimSpace(v.TransactionType), string(extract.Credit)) {
		direction = extract.Credit
	}

	c := extract.Candidate{
		Amount:       extract.RoundAmount(v.Amount),
		Counterparty: strings.TrimSpace(v.Merchant),
		Network:      extract.ParseNetwork(v.PaymentMethod),
		ReferenceID:  strings.TrimSpace(v.ReferenceNumber),
		Direction:    direction,
		Method:       extract.MethodAI,
	}

	if c.Counterparty == "" || strings.EqualFold(c.Counterparty, unknownParty) {
		c.Counterparty = senderParty(sender)
	}

	return c, nil
}

func fallbackEmail(e Email, body string) (extract.Candidate, *Rejection) {
	c := extract.ExtractLenient(e.Subject + "\n" + body)
	if !c.HasAmount() {
		return extract.Candidate{}, reject(ReasonNotTransaction, "no amount")
	}

	if c.Counterparty == "" {
		c.Counterparty = senderParty(e.Sender)
	}

	return c, nil
}

func senderParty(sender string) string {
	s := strings.ToLower(sender)

	for _, bank := range bankSenders {
		if strings.Contains(s, bank) {
			return bankTransactionParty
		}
	}

	return unknownParty
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
