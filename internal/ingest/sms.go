package ingest

import (
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/lumen/internal/extract"
)

var (
	smsBodyRe = regexp.MustCompile(`(?s)\*{8,}[\r\n]+(.+)`)
	smsFromRe = regexp.MustCompile(`From: '(.+?)' \((.+?)\)`)
	smsWhenRe = regexp.MustCompile(`When: (.+?)[\r\n]`)
)

const unknownSMSParty = "Unknown Merchant"

// Envelope is the forwarder's wrapper around an SMS body.
type Envelope struct {
	Body         string
	SenderName   string
	SenderNumber string
	When         string
}

// ParseEnvelope splits a forwarded SMS. Payloads without the separator line are
// treated as a bare body.
func ParseEnvelope(raw string) Envelope {
	env := Envelope{Body: raw}

	if m := smsBodyRe.FindStringSubmatch(raw); m != nil {
		env.Body = strings.TrimSpace(m[1])
	}

	if m := smsFromRe.FindStringSubmatch(raw); m != nil {
		env.SenderName = m[1]
		env.SenderNumber = m[2]
	}

	if m := smsWhenRe.FindStringSubmatch(raw); m != nil {
		env.When = m[1]
	}

	return env
}

func NormalizeSMS(s SMS) (Normalized, *Rejection) {
	env := ParseEnvelope(s.Raw)

	if !extract.IsPayment(env.Body) {
		return Normalized{}, reject(ReasonNonPayment, "")
	}

	c := extract.Extract(env.Body)
	if !c.HasAmount() {
		return Normalized{}, reject(ReasonNoAmount, "could not extract transaction amount from SMS")
	}

	if c.Counterparty == "" {
		c.Counterparty = env.SenderName
	}

	if c.Counterparty == "" {
		c.Counterparty = unknownSMSParty
	}

	meta := map[string]any{
		"transaction_type": string(c.Direction),
		"raw_sms":          env.Body,
	}

	setIfPresent(meta, "upi_id", c.Handle)
	setIfPresent(meta, "sender_id", env.SenderName)
	setIfPresent(meta, "sender_phone", env.SenderNumber)
	setIfPresent(meta, "sms_timestamp", env.When)

	return Normalized{
		Candidate:  c,
		Text:       env.Body,
		Confidence: 1,
		Metadata:   meta,
	}, nil
}

func setIfPresent(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
