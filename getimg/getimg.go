// Package getimg is a client for the GetImg image-generation API.
package getimg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scribeworks/scribe/retry"
)

// defaultAPIURL is the FLUX schnell text-to-image endpoint.
const defaultAPIURL = "https://api.getimg.ai/v1/flux-schnell/text-to-image"

// Generation parameters match what the content backend expects: square
// JPEG output returned as a hosted URL rather than inline bytes.
const (
	imageWidth  = 1024
	imageHeight = 1024
	imageSteps  = 4
)

// Client talks to the GetImg generation endpoint.
type Client struct {
	apiKey string
	apiURL string
	http   *http.Client

	retries    int
	retryDelay time.Duration
}

// New creates a Client with bearer-token auth. An empty apiURL selects the
// default FLUX endpoint.
func New(apiKey, apiURL string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		http:       &http.Client{Timeout: timeout},
		retries:    3,
		retryDelay: 2 * time.Second,
	}
}

// Generate submits a prompt and returns the hosted URL of the generated
// image. Non-200 responses and bodies without a url field are errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"prompt":          prompt,
		"width":           imageWidth,
		"height":          imageHeight,
		"steps":           imageSteps,
		"output_format":   "jpeg",
		"response_format": "url",
	})
	if err != nil {
		return "", fmt.Errorf("getimg: marshal request: %w", err)
	}

	var imageURL string
	err = retry.Do(ctx, c.retries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var payload struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return err
		}
		if payload.URL == "" {
			return fmt.Errorf("response missing url field")
		}
		imageURL = payload.URL
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("getimg: generate: %w", err)
	}
	return imageURL, nil
}
