// Package serper is a client for the Serper search API: video search, web
// search, and page scraping. Responses feed prompt construction, so results
// are reduced to the handful of fields the prompts actually use.
package serper

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

const (
	defaultBaseURL   = "https://google.serper.dev"
	defaultScrapeURL = "https://scrape.serper.dev"
)

// Video is a single video search result.
type Video struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Result is a single organic web search result.
type Result struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Client talks to the Serper API.
type Client struct {
	apiKey    string
	baseURL   string
	scrapeURL string
	http      *http.Client

	retries    int
	retryDelay time.Duration
}

// New creates a Client. apiKey must be non-empty; timeout bounds each request.
func New(apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		scrapeURL:  defaultScrapeURL,
		http:       &http.Client{Timeout: timeout},
		retries:    3,
		retryDelay: 2 * time.Second,
	}
}

// WithBaseURL overrides the API endpoints, used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	c.scrapeURL = base
	return c
}

// Videos searches for videos matching query.
func (c *Client) Videos(ctx context.Context, query string) ([]Video, error) {
	var payload struct {
		Videos []Video `json:"videos"`
	}
	if err := c.post(ctx, c.baseURL+"/videos", map[string]any{"q": query}, &payload); err != nil {
		return nil, fmt.Errorf("serper: video search %q: %w", query, err)
	}
	return payload.Videos, nil
}

// Search returns the top organic results for keyword.
func (c *Client) Search(ctx context.Context, keyword string, num int) ([]Result, error) {
	if num <= 0 {
		num = 10
	}
	var payload struct {
		Organic []Result `json:"organic"`
	}
	if err := c.post(ctx, c.baseURL+"/search", map[string]any{"q": keyword, "num": num}, &payload); err != nil {
		return nil, fmt.Errorf("serper: search %q: %w", keyword, err)
	}
	return payload.Organic, nil
}

// Scrape fetches the text content of a webpage through the scrape endpoint.
func (c *Client) Scrape(ctx context.Context, pageURL string) (string, error) {
	var payload struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	}
	if err := c.post(ctx, c.scrapeURL+"/", map[string]any{"url": pageURL}, &payload); err != nil {
		return "", fmt.Errorf("serper: scrape %q: %w", pageURL, err)
	}
	if payload.Text != "" {
		return payload.Text, nil
	}
	if payload.Content != "" {
		return payload.Content, nil
	}
	return "", fmt.Errorf("serper: scrape %q: no text content in response", pageURL)
}

func (c *Client) post(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return retry.Do(ctx, c.retries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("X-API-KEY", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

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
		return json.Unmarshal(raw, out)
	})
}
