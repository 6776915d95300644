// Package wordpress uploads media to a WordPress site through the REST API.
// Generated images are downloaded, re-encoded, given vision-derived metadata,
// and posted to wp-json/wp/v2/media; the returned hosted URL is what ends up
// in the enriched document.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxDownload   = 20 << 20 // 20MB
)

// Metadata carries the alt text and title attached to an upload.
type Metadata struct {
	AltText string `json:"alt_text"`
	Title   string `json:"title"`
}

// Vision produces text from an image, used for SEO metadata generation.
type Vision interface {
	DescribeImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

// Client uploads media to one WordPress site using basic auth.
type Client struct {
	apiBase  string
	username string
	password string
	vision   Vision
	http     *http.Client
}

// New creates a Client for the site at baseURL. vision may be nil, in which
// case uploads fall back to metadata derived from the alt text the caller
// already has.
func New(baseURL, username, password string, vision Vision, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiBase:  strings.TrimRight(baseURL, "/") + "/wp-json/wp/v2/",
		username: username,
		password: password,
		vision:   vision,
		http:     &http.Client{Timeout: timeout},
	}
}

// UploadFromURL downloads an image, normalizes it to JPEG, and uploads it.
// Returns the hosted URL of the new media item.
func (c *Client) UploadFromURL(ctx context.Context, imageURL, fallbackAlt string) (string, error) {
	raw, err := c.download(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("wordpress: download image: %w", err)
	}

	data, err := encodeJPEG(raw)
	if err != nil {
		return "", fmt.Errorf("wordpress: process image: %w", err)
	}

	meta := c.describeImage(ctx, data, fallbackAlt)
	filename := fmt.Sprintf("%s-%d.jpg", slugify(meta.Title), time.Now().UnixMilli())
	return c.uploadBytes(ctx, data, filename, meta)
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownload))
}

// describeImage asks the vision model for alt text and a title. Metadata is
// best-effort: on any failure the fallback alt text is used instead.
func (c *Client) describeImage(ctx context.Context, data []byte, fallbackAlt string) Metadata {
	fallback := Metadata{AltText: fallbackAlt, Title: slugify(fallbackAlt)}
	if c.vision == nil {
		return fallback
	}
	prompt := `Analyze this image and provide SEO-optimized metadata.

Return ONLY a JSON object with these fields:
- alt_text: descriptive text for accessibility (under 125 chars)
- title: image title with words separated by dashes (under 60 chars)`

	text, err := c.vision.DescribeImage(ctx, prompt, data, "image/jpeg")
	if err != nil {
		return fallback
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &meta); err != nil {
		return fallback
	}
	if meta.AltText == "" || meta.Title == "" {
		return fallback
	}
	meta.Title = slugify(meta.Title)
	return meta
}

func (c *Client) uploadBytes(ctx context.Context, data []byte, filename string, meta Metadata) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("wordpress: build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("wordpress: build multipart: %w", err)
	}
	_ = mw.WriteField("alt_text", meta.AltText)
	_ = mw.WriteField("title", meta.Title)
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("wordpress: build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"media", &buf)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("wordpress: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("wordpress: upload: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var media struct {
		GUID struct {
			Rendered string `json:"rendered"`
		} `json:"guid"`
		SourceURL string `json:"source_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return "", fmt.Errorf("wordpress: parse upload response: %w", err)
	}
	if media.GUID.Rendered != "" {
		return media.GUID.Rendered, nil
	}
	if media.SourceURL != "" {
		return media.SourceURL, nil
	}
	return "", fmt.Errorf("wordpress: upload response missing media URL")
}

// stripCodeFence removes a surrounding markdown code fence, which models
// sometimes wrap JSON in despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dashed := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dashed = false
		default:
			if !dashed && b.Len() > 0 {
				b.WriteByte('-')
				dashed = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "image"
	}
	return out
}
