package scribe

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scribeworks/scribe/outreach"
)

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/health", a.handleHealth)

	api := e.Group("/api", a.requireAPIKey)
	api.POST("/generate", a.handleGenerate)
	api.POST("/outreach/setup", a.handleOutreachSetup)
	api.POST("/outreach/campaign", a.handleOutreachCampaign)
	api.GET("/outreach/stats", a.handleOutreachStats)
	api.POST("/webhooks/reply", a.handleReplyWebhook)
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type generateRequest struct {
	Keyword string `json:"keyword"`
}

// handleGenerate runs the full content pipeline for a keyword. Generation is
// slow and expensive, so it is rate-limited per client IP.
func (a *App) handleGenerate(c echo.Context) error {
	if !a.generateLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "generation rate limit exceeded"})
	}

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "keyword is required"})
	}

	result, err := a.Pipeline.GenerateCompletePost(c.Request().Context(), req.Keyword, a.Config.SiteURL)
	if err != nil {
		c.Logger().Errorf("generate %q: %v", req.Keyword, err)
		return c.JSON(http.StatusInternalServerError, result)
	}
	return c.JSON(http.StatusOK, result)
}

type outreachSetupRequest struct {
	BlogTitle       string `json:"blog_title"`
	BlogDescription string `json:"blog_description"`
}

// handleOutreachSetup discovers backlink prospects for the site and stores
// them for later campaign runs.
func (a *App) handleOutreachSetup(c echo.Context) error {
	var req outreachSetupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.BlogTitle == "" {
		req.BlogTitle = a.Config.SiteName
	}
	if req.BlogDescription == "" {
		req.BlogDescription = a.Config.SiteDescription
	}

	saved, err := a.Prospects.Setup(c.Request().Context(), a.Config.SiteID, req.BlogTitle, req.BlogDescription)
	if err != nil {
		c.Logger().Errorf("outreach setup: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "completed", "prospects_saved": saved})
}

// handleOutreachCampaign runs one outreach batch.
func (a *App) handleOutreachCampaign(c echo.Context) error {
	result, err := a.Campaign.Run(c.Request().Context(), a.site())
	if err != nil {
		c.Logger().Errorf("outreach campaign: %v", err)
		return c.JSON(http.StatusInternalServerError, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (a *App) handleOutreachStats(c echo.Context) error {
	stats, err := a.Store.Stats(a.Config.SiteID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

type replyWebhookRequest struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// handleReplyWebhook records an inbound reply forwarded by the mail
// provider.
func (a *App) handleReplyWebhook(c echo.Context) error {
	var req replyWebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Sender == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sender is required"})
	}

	err := a.Store.RecordReply(outreach.Reply{
		Sender:    req.Sender,
		Subject:   req.Subject,
		Body:      req.Body,
		SiteID:    a.Config.SiteID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "recorded"})
}
