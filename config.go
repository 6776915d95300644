package scribe

import (
	"fmt"
	"time"

	"github.com/scribeworks/scribe/outreach"
)

// Config holds all configuration for a scribe instance. Credentials are
// passed in explicitly; nothing reads the environment after startup.
type Config struct {
	SiteName        string // Blog name used in outreach pitches (default "Blog")
	SiteURL         string // Canonical blog URL, e.g. "https://example.com"
	SiteDescription string // Short blog description for outreach pitches
	Founder         string // Name signed at the bottom of outreach emails
	SiteID          int64  // Identifies this blog in the outreach store (default 1)

	Addr         string // Listen address (default ":8080")
	DatabasePath string // SQLite path for outreach tracking (default "data/outreach.db")
	APIKey       string // Required: bearer key protecting the HTTP API

	GeminiAPIKey string // Required: key for content generation
	GeminiModel  string // Model override (defaults to llm.DefaultModel)
	SerperAPIKey string // Required: key for search (media + prospects)
	GetimgAPIKey string // Key for image generation; images disabled if empty

	WordPressUser     string // WordPress username for media uploads
	WordPressPassword string // WordPress application password

	MailboxLayerAPIKey string // Key for recipient validation
	SMTP               outreach.SMTPConfig

	MaxEmails       int           // Prospects consumed per campaign run (default 10)
	RequestTimeout  time.Duration // Per external call (default 2min)
	PipelineTimeout time.Duration // Whole generate pipeline (default 15min)
	SitemapCacheTTL time.Duration // Sitemap post cache (default 5min)
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Blog"
	}
	if c.SiteID == 0 {
		c.SiteID = 1
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/outreach.db"
	}
	if c.MaxEmails == 0 {
		c.MaxEmails = 10
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 2 * time.Minute
	}
	if c.PipelineTimeout == 0 {
		c.PipelineTimeout = 15 * time.Minute
	}
	if c.SitemapCacheTTL == 0 {
		c.SitemapCacheTTL = 5 * time.Minute
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("scribe: APIKey is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("scribe: GeminiAPIKey is required")
	}
	if c.SerperAPIKey == "" {
		return fmt.Errorf("scribe: SerperAPIKey is required")
	}
	if c.SiteURL == "" {
		return fmt.Errorf("scribe: SiteURL is required")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
