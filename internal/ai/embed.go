package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Embed returns the document embedding for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.models.EmbedContent(ctx, c.embedModel, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyResponse
	}

	return resp.Embeddings[0].Values, nil
}

func (c *Client) EmbeddingModel() string {
	return c.embedModel
}
