package view

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

// Summarize renders an ingestion outcome as a few lines of text.
func Summarize(res *ingest.Result) string {
	if res == nil {
		return ""
	}

	if res.Rejected() {
		return "Not recorded: " + res.Rejection.String()
	}

	var b strings.Builder

	if res.Transaction == nil {
		b.WriteString("Source stored, no transaction could be extracted")
		if res.Source != nil {
			fmt.Fprintf(&b, "\nSource: %s", res.Source.ID)
		}

		return b.String()
	}

	tx := res.Transaction

	fmt.Fprintf(&b, "Recorded %s %s %s\n", FormatAmount(tx.Amount), tx.Direction, tx.MerchantNameRaw)
	fmt.Fprintf(&b, "Date:     %s\n", FormatDate(tx.Date))
	fmt.Fprintf(&b, "Category: %s (%.0f%%)\n", tx.Category, tx.ClassificationConfidence*100)

	if tx.Network != "" {
		fmt.Fprintf(&b, "Network:  %s\n", tx.Network)
	}

	fmt.Fprintf(&b, "ID:       %s", tx.ID)

	return b.String()
}

type ingestResultMsg struct {
	res *ingest.Result
	err error
}

func renderOutcome(res *ingest.Result, err error) string {
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", err))
	}

	if res == nil {
		return ""
	}

	if res.Rejected() {
		return faintStyle.Render(Summarize(res))
	}

	return successStyle.Render(Summarize(res))
}
