package gmail

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxResults   = 50
	LookbackDays = 7
)

var queryKeywords = []string{
	"payment", "transaction", "receipt", "invoice", "UPI", "IMPS", "NEFT",
	"debited", "credited", `"payment confirmation"`, "bank", `"Rs."`, `"INR"`, `"₹"`,
}

// Query builds the unread payment search. Without a previous check it looks back
// LookbackDays calendar days.
func Query(lastCheck, now time.Time) string {
	var after string
	if lastCheck.IsZero() {
		after = "after:" + now.AddDate(0, 0, -LookbackDays).Format("2006/01/02")
	} else {
		after = fmt.Sprintf("after:%d", lastCheck.Unix())
	}

	return fmt.Sprintf("is:unread %s (%s)", after, strings.Join(queryKeywords, " OR "))
}
