package extract

import (
	"regexp"
	"strings"
)

var paymentPatterns = []*regexp.Regexp{
	// currency
	regexp.MustCompile(`(?i)\brs\.?\s*\d+`),
	regexp.MustCompile(`(?i)₹\s*\d+`),
	regexp.MustCompile(`(?i)inr\s*\d+`),
	// transaction verbs
	regexp.MustCompile(`(?i)debited?|credited?|\bpaid\b|\breceived\b|\bsent\b|\btransferred\b|\bspent\b`),
	// networks
	regexp.MustCompile(`(?i)\bupi\b|\bimps\b|\bneft\b|\brtgs\b`),
	// account and reference markers
	regexp.MustCompile(`(?i)\ba/?c\s*(?:no\.?)?\s*[x*]*\d+`),
	regexp.MustCompile(`(?i)\bref(?:erence)?(?:\s*no\.?)?[:\s]*\d+`),
	regexp.MustCompile(`(?i)\btxn|\btransaction|\bpayment`),
}

// IsPayment reports whether text looks like a financial notification. It is a cheap
// gate in front of extraction, so false positives are acceptable.
func IsPayment(text string) bool {
	for _, p := range paymentPatterns {
		if p.MatchString(text) {
			return true
		}
	}

	return false
}

var emailKeywords = []string{
	"payment", "transaction", "debited", "credited", "upi", "imps", "neft",
	"purchase", "receipt", "rs.", "inr", "₹", "bank", "transfer", "paid", "amount",
}

// HasEmailKeywords is the pre-check run before a mail is sent to AI extraction.
func HasEmailKeywords(subject, body string) bool {
	text := strings.ToLower(subject + " " + body)
	for _, k := range emailKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}

	return false
}
