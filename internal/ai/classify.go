package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/MrJamesThe3rd/lumen/internal/classify"
)

type classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Classify asks the model for one category from the request vocabulary.
func (c *Client) Classify(ctx context.Context, req classify.Request) (classify.Result, error) {
	var out classification

	if err := c.generateJSON(ctx, &out, &genai.Part{Text: classifyPrompt(req)}); err != nil {
		return classify.Result{}, fmt.Errorf("classifying %q: %w", req.Counterparty, err)
	}

	return classify.Result{
		Category:   out.Category,
		Confidence: out.Confidence,
		Reasoning:  out.Reasoning,
	}, nil
}

func classifyPrompt(req classify.Request) string {
	var b strings.Builder

	b.WriteString("You categorize Indian financial transactions.\n\n")
	fmt.Fprintf(&b, "Merchant: %s\n", req.Counterparty)
	fmt.Fprintf(&b, "Amount: INR %s\n", req.Amount.StringFixed(2))

	if len(req.Fields) > 0 {
		keys := make([]string, 0, len(req.Fields))
		for k := range req.Fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		b.WriteString("Details:\n")

		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, req.Fields[k])
		}
	}

	b.WriteString("\nChoose exactly one category from this list:\n")

	for _, cat := range req.Vocabulary {
		fmt.Fprintf(&b, "- %s\n", cat)
	}

	b.WriteString("\nRespond ONLY with JSON of the form ")
	b.WriteString(`{"category": "<one of the list>", "confidence": <0..1>, "reasoning": "<one sentence>"}`)
	b.WriteString("\n")

	return b.String()
}
