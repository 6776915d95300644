// Package llm wraps the Gemini API behind a small client used by every
// pipeline stage. Components depend on the narrow subset of methods they
// need, so tests can substitute stubs without touching the real API.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.0-flash"

// Config holds the settings for a Client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration // per-call deadline (default 2min)
}

// Client is a thin wrapper over google.golang.org/genai that exposes the
// three generation modes the pipeline uses: free text, schema-constrained
// JSON, and search-grounded text.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New creates a Client against the Gemini API backend.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return &Client{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Text generates a free-text completion for the prompt.
func (c *Client) Text(ctx context.Context, prompt string, temperature float32) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
}

// JSON generates a completion constrained to the given response schema and
// returns the raw JSON text. Callers must still validate the payload: the
// model output is untrusted wire data even when a schema was requested.
func (c *Client) JSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
}

// Grounded generates a completion with the Google Search tool enabled, for
// prompts that need fresh web context. Temperature is pinned to zero as
// recommended for search grounding.
func (c *Client) Grounded(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	})
}

// DescribeImage runs a vision prompt against raw image bytes and returns the
// model's text output. Used to derive upload metadata for generated images.
func (c *Client) DescribeImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mimeType),
	}, genai.RoleUser)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	})
	if err != nil {
		return "", fmt.Errorf("llm: describe image: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("llm: empty vision response from model %s", c.model)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("llm: empty response from model %s", c.model)
	}
	return text, nil
}
