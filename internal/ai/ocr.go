package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const ocrPrompt = `Transcribe all text visible in the attached receipt or invoice, preserving line breaks.
Respond ONLY with JSON of the form {"text": "<transcription>", "confidence": <0..1>}.
If the document has no legible text, return an empty text and confidence 0.`

type transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ExtractText transcribes an image or PDF sent inline with the prompt.
func (c *Client) ExtractText(ctx context.Context, content []byte, mimeType string) (string, float64, error) {
	var out transcription

	err := c.generateJSON(ctx, &out,
		&genai.Part{Text: ocrPrompt},
		&genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: content}},
	)
	if err != nil {
		return "", 0, fmt.Errorf("transcribing document: %w", err)
	}

	return out.Text, min(max(out.Confidence, 0), 1), nil
}
