// Package scribe is an autonomous content engine built with Go and Echo.
// Given a keyword it drafts a search-grounded blog post, fixes its HTML,
// adds internal links from the site's sitemap, enriches it with images and
// videos, and runs backlink outreach campaigns for the published site.
package scribe

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scribeworks/scribe/getimg"
	"github.com/scribeworks/scribe/linking"
	"github.com/scribeworks/scribe/llm"
	"github.com/scribeworks/scribe/media"
	"github.com/scribeworks/scribe/outreach"
	"github.com/scribeworks/scribe/serper"
	"github.com/scribeworks/scribe/sitemap"
	"github.com/scribeworks/scribe/wordpress"
	"github.com/scribeworks/scribe/writer"
)

// App is the central scribe application. It wires together the model client,
// search, media tools, the generation pipeline, and the outreach campaign.
type App struct {
	Config    Config
	Echo      *echo.Echo
	Store     *outreach.Store
	Pipeline  *Pipeline
	Campaign  *outreach.Campaign
	Prospects *outreach.ProspectGenerator
	Sitemaps  *sitemap.Cache

	generateLimiter *RateLimiter
	customRoutes    []func(*App)
}

// New creates a scribe App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start wires all components, then starts the HTTP server and blocks until
// it stops.
func (a *App) Start() error {
	if err := a.wire(context.Background()); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config
	if err := cfg.validate(); err != nil {
		return err
	}

	model, err := llm.New(ctx, llm.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("scribe: init model client: %w", err)
	}

	search := serper.New(cfg.SerperAPIKey, cfg.RequestTimeout)
	a.Sitemaps = sitemap.NewCache(sitemap.NewFetcher(cfg.RequestTimeout), cfg.SitemapCacheTTL)

	// Media tools. Image generation needs both a getimg key and WordPress
	// credentials to host the result; videos only need search.
	var images media.ImageGenerator
	if cfg.GetimgAPIKey != "" && cfg.WordPressUser != "" {
		wp := wordpress.New(cfg.SiteURL, cfg.WordPressUser, cfg.WordPressPassword, model, cfg.RequestTimeout)
		images = media.NewImageTool(model, getimg.New(cfg.GetimgAPIKey, "", cfg.RequestTimeout), wp)
	} else {
		log.Println("scribe: image generation disabled (getimg or WordPress credentials missing)")
	}
	videos := media.NewVideoTool(model, search)

	a.Pipeline = NewPipeline(
		writer.NewGenerator(model),
		writer.NewEditor(model),
		linking.New(model, a.Sitemaps),
		media.NewEnricher(model, images, videos),
		cfg.PipelineTimeout,
	)

	store, err := outreach.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("scribe: init outreach store: %w", err)
	}
	a.Store = store

	a.Prospects = outreach.NewProspectGenerator(model, search, store)
	a.Campaign = outreach.NewCampaign(
		store,
		outreach.NewTemplateMaker(model, a.Sitemaps),
		outreach.NewEmailCreator(cfg.RequestTimeout),
		outreach.NewValidator(cfg.MailboxLayerAPIKey, cfg.RequestTimeout),
		outreach.NewSender(cfg.SMTP),
		cfg.MaxEmails,
	)

	a.generateLimiter = NewRateLimiter(5, time.Hour)
	return nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// site builds the outreach Site description from config.
func (a *App) site() outreach.Site {
	return outreach.Site{
		ID:          a.Config.SiteID,
		Name:        a.Config.SiteName,
		URL:         a.Config.SiteURL,
		Description: a.Config.SiteDescription,
		Founder:     a.Config.Founder,
	}
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("scribe: required environment variable %s is not set", key)
	}
	return v
}
