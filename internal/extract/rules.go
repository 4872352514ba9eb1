package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names the candidate attribute a rule populates.
type Field string

const (
	FieldAmount        Field = "amount"
	FieldDirection     Field = "direction"
	FieldHandle        Field = "handle"
	FieldCounterparty  Field = "counterparty"
	FieldReference     Field = "reference"
	FieldMaskedAccount Field = "masked_account"
	FieldBalance       Field = "balance"
	FieldNetwork       Field = "network"
)

// Rule is one entry of the extraction table. Rules of the same field are tried in
// priority order and the first acceptable match wins.
type Rule struct {
	Field    Field
	Priority int
	Pattern  *regexp.Regexp
	// Value is the fixed result of keyword rules (network, direction).
	Value string
	// MinLen rejects captures shorter than this many characters.
	MinLen int
	// Lenient rules only run on the fallback path (email bodies, receipts).
	Lenient bool
}

const number = `([0-9][0-9,]*(?:\.[0-9]+)?)`

var rules = []Rule{
	{Field: FieldAmount, Priority: 0, Pattern: regexp.MustCompile(`(?i)(?:\brs\.?|₹|\binr)\s*` + number)},
	{Field: FieldAmount, Priority: 1, Pattern: regexp.MustCompile(`(?i)` + number + `\s*(?:rs\b\.?|₹|inr\b)`)},
	{Field: FieldAmount, Priority: 2, Pattern: regexp.MustCompile(`(?i)\bamount[:\s]*(?:rs\.?|₹|inr)?\s*` + number), Lenient: true},
	{Field: FieldAmount, Priority: 3, Pattern: regexp.MustCompile(`(?i)\b(?:debited|credited|paid)[:\s]*(?:rs\.?|₹|inr)?\s*` + number), Lenient: true},
	{Field: FieldAmount, Priority: 4, Pattern: regexp.MustCompile(`(?i)\b(?:grand\s+)?total[:\s]*(?:rs\.?|₹|inr)?\s*` + number), Lenient: true},

	{Field: FieldDirection, Priority: 0, Pattern: regexp.MustCompile(`(?i)\b(?:credited|received|deposited)\b`), Value: string(Credit)},

	{Field: FieldHandle, Priority: 0, Pattern: regexp.MustCompile(`(?i)\b(?:to|from)\s+(?:vpa\s+)?([a-z0-9._-]+@[a-z]+)`)},

	{Field: FieldCounterparty, Priority: 0, Pattern: regexp.MustCompile(`\b(?:to|at|from)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`), MinLen: 2},
	{Field: FieldCounterparty, Priority: 1, Pattern: regexp.MustCompile(`\b(?:to|at|from)\s+([A-Z0-9]+)\b`), MinLen: 2},

	{Field: FieldReference, Priority: 0, Pattern: regexp.MustCompile(`(?i)\bupi\s+ref(?:erence)?[:\s]*([0-9]+)`), MinLen: 6},
	{Field: FieldReference, Priority: 1, Pattern: regexp.MustCompile(`(?i)\bref(?:erence)?(?:\s*no\.?)?[:\s]*([0-9]+)`), MinLen: 6},
	{Field: FieldReference, Priority: 2, Pattern: regexp.MustCompile(`(?i)\btxn[:\s]*([0-9]+)`), MinLen: 6},
	{Field: FieldReference, Priority: 3, Pattern: regexp.MustCompile(`(?i)\b(?:invoice|bill|receipt|order)\s*(?:no\.?|#|id)[:\s]*([A-Z0-9-]+)`), MinLen: 4, Lenient: true},

	{Field: FieldMaskedAccount, Priority: 0, Pattern: regexp.MustCompile(`(?i)\ba/?c\s*(?:no\.?)?\s*[x*]*([0-9]{4})`)},

	{Field: FieldBalance, Priority: 0, Pattern: regexp.MustCompile(`(?i)\b(?:balance|bal)[:\s]*(?:rs\.?|₹|inr)?\s*` + number)},

	{Field: FieldNetwork, Priority: 0, Pattern: regexp.MustCompile(`(?i)\bupi\b`), Value: string(NetworkUPI)},
	{Field: FieldNetwork, Priority: 1, Pattern: regexp.MustCompile(`(?i)\bimps\b`), Value: string(NetworkIMPS)},
	{Field: FieldNetwork, Priority: 2, Pattern: regexp.MustCompile(`(?i)\bneft\b`), Value: string(NetworkNEFT)},
	{Field: FieldNetwork, Priority: 3, Pattern: regexp.MustCompile(`(?i)\brtgs\b`), Value: string(NetworkRTGS)},
	{Field: FieldNetwork, Priority: 4, Pattern: regexp.MustCompile(`(?i)\bcard\b`), Value: string(NetworkCard)},
	{Field: FieldNetwork, Priority: 5, Pattern: regexp.MustCompile(`(?i)\bnet\s*banking\b`), Value: string(NetworkNetbanking)},
}

// byField groups the table per field, sorted by priority.
var byField = func() map[Field][]Rule {
	m := make(map[Field][]Rule)
	for _, r := range rules {
		m[r.Field] = append(m[r.Field], r)
	}

	for f := range m {
		sort.SliceStable(m[f], func(i, j int) bool { return m[f][i].Priority < m[f][j].Priority })
	}

	return m
}()

// Rules returns a copy of the extraction table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)

	return out
}

// Extract runs the strict rule set used for SMS bodies.
func Extract(text string) Candidate {
	return run(text, false)
}

// ExtractLenient also applies the lenient rules. Used when AI extraction is unavailable
// and for OCR output.
func ExtractLenient(text string) Candidate {
	return run(text, true)
}

func run(text string, lenient bool) Candidate {
	c := Candidate{
		Direction: Debit,
		Network:   NetworkUnknown,
		Method:    MethodRegex,
	}

	if amount, ok := firstDecimal(text, FieldAmount, lenient); ok && amount.IsPositive() {
		c.Amount = amount
	}

	if v, ok := first(text, FieldDirection, lenient); ok {
		c.Direction = Direction(v)
	}

	if handle, ok := first(text, FieldHandle, lenient); ok {
		c.Handle = handle
		c.Counterparty, _, _ = strings.Cut(handle, "@")
	} else if name, ok := first(text, FieldCounterparty, lenient); ok {
		c.Counterparty = name
	}

	c.ReferenceID, _ = first(text, FieldReference, lenient)
	c.MaskedAccount, _ = first(text, FieldMaskedAccount, lenient)

	if balance, ok := firstDecimal(text, FieldBalance, lenient); ok {
		c.Balance = &balance
	}

	if v, ok := first(text, FieldNetwork, lenient); ok {
		c.Network = Network(v)
	}

	return c
}

// first returns the capture (or fixed Value) of the highest priority matching rule.
func first(text string, field Field, lenient bool) (string, bool) {
	for _, r := range byField[field] {
		if r.Lenient && !lenient {
			continue
		}

		if r.Value != "" {
			if r.Pattern.MatchString(text) {
				return r.Value, true
			}

			continue
		}

		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			v := strings.TrimSpace(m[1])
			if len(v) < r.MinLen || v == "" {
				continue
			}

			return v, true
		}
	}

	return "", false
}

func firstDecimal(text string, field Field, lenient bool) (decimal.Decimal, bool) {
	for _, r := range byField[field] {
		if r.Lenient && !lenient {
			continue
		}

		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			d, err := ParseAmount(m[1])
			if err != nil {
				continue
			}

			return d, true
		}
	}

	return decimal.Decimal{}, false
}

// ParseAmount parses a numeric token with optional thousands separators and rounds it
// to paise.
// Format examples: "1,299.00" -> 1299.00, "500" -> 500, "12,34,567.5" -> 1234567.5.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	clean = strings.TrimSuffix(clean, ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return RoundAmount(d), nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
