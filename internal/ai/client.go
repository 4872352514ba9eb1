// Package ai adapts Gemini to the classification, extraction and embedding collaborators.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultEmbeddingModel = "gemini-embedding-001"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Models is the subset of *genai.Models the client uses.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Config struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

type Client struct {
	models     Models
	model      string
	embedModel string
	log        zerolog.Logger
}

// New builds a client on the Gemini API backend.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1beta"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return NewWithModels(gc.Models, cfg, log), nil
}

func NewWithModels(models Models, cfg Config, log zerolog.Logger) *Client {
	c := &Client{
		models:     models,
		model:      cfg.Model,
		embedModel: cfg.EmbeddingModel,
		log:        log,
	}

	if c.model == "" {
		c.model = DefaultModel
	}

	if c.embedModel == "" {
		c.embedModel = DefaultEmbeddingModel
	}

	return c
}

// generateJSON sends parts as one user turn and decodes the model's JSON object into dst.
func (c *Client) generateJSON(ctx context.Context, dst any, parts ...*genai.Part) error {
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("generating content: %w", err)
	}

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal([]byte(cleanJSON(raw)), dst); err != nil {
		c.log.Debug().Str("response", truncate(raw, 200)).Msg("unparseable model response")
		return fmt.Errorf("decoding model response: %w", err)
	}

	return nil
}

// cleanJSON strips Markdown fences and any chatter around the outermost object.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}

		s = strings.TrimSpace(s[idx+1:])
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}

	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
