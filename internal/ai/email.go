package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

// ExtractEmail asks the model whether an email reports a transaction and, if so, its fields.
func (c *Client) ExtractEmail(ctx context.Context, p ingest.EmailPrompt) (*ingest.EmailVerdict, error) {
	var v ingest.EmailVerdict

	if err := c.generateJSON(ctx, &v, &genai.Part{Text: emailPrompt(p)}); err != nil {
		return nil, fmt.Errorf("extracting email: %w", err)
	}

	return &v, nil
}

func emailPrompt(p ingest.EmailPrompt) string {
	return fmt.Sprintf(`You are a financial transaction parser. Analyze this email and extract transaction details.

Email Subject: %s
Email Sender: %s
Email Body:
%s

Respond ONLY with valid JSON in this exact format:
{
    "is_transaction": true or false,
    "amount": 299.00,
    "merchant": "merchant name",
    "transaction_type": "debit" or "credit",
    "payment_method": "UPI" or "CARD" or "IMPS" or "NEFT" or "NETBANKING" or "UNKNOWN",
    "reference_number": "reference if available",
    "confidence": 0.95
}

Rules:
1. is_transaction is true only for a real payment or transaction notification, never for marketing, offers, statements or newsletters.
2. amount is a number without currency symbols.
3. merchant is the payee, or the payer for money received.
4. transaction_type is "debit" when money left the account and "credit" when it arrived.
5. If you cannot extract the details with more than 60%% confidence, set is_transaction to false.
6. confidence (0-1) reflects how clear the transaction details are.
`, p.Subject, p.Sender, p.Body)
}
