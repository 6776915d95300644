package scribe

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scribeworks/scribe/outreach"
	"github.com/scribeworks/scribe/writer"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := New(Config{
		APIKey:       "secret",
		GeminiAPIKey: "g",
		SerperAPIKey: "s",
		SiteURL:      "https://example.com",
	})

	store, err := outreach.NewStore(filepath.Join(t.TempDir(), "outreach.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	a.Store = store
	a.Pipeline = NewPipeline(&stubGenerator{post: &writer.BlogPost{Content: "<p>post</p>"}}, nil, nil, nil, time.Minute)
	a.generateLimiter = NewRateLimiter(100, time.Hour)
	a.setupRoutes()
	return a
}

func do(a *App, method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
}

func TestAPIRequiresKey(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, http.MethodPost, "/api/generate", `{"keyword":"x"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key = %d, want 401", rec.Code)
	}
	rec = do(a, http.MethodPost, "/api/generate", `{"keyword":"x"}`, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key = %d, want 401", rec.Code)
	}
}

func TestGenerate(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, http.MethodPost, "/api/generate", `{"keyword":"best espresso"}`, "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/generate = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"success"`) || !strings.Contains(body, `"keyword":"best espresso"`) {
		t.Errorf("response = %s", body)
	}
}

func TestGenerateRejectsEmptyKeyword(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, http.MethodPost, "/api/generate", `{"keyword":"  "}`, "secret")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty keyword = %d, want 400", rec.Code)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	a := newTestApp(t)
	a.generateLimiter = NewRateLimiter(1, time.Hour)

	if rec := do(a, http.MethodPost, "/api/generate", `{"keyword":"x"}`, "secret"); rec.Code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", rec.Code)
	}
	if rec := do(a, http.MethodPost, "/api/generate", `{"keyword":"x"}`, "secret"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", rec.Code)
	}
}

func TestReplyWebhookRecordsReply(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, http.MethodPost, "/api/webhooks/reply",
		`{"sender":"owner@target.example.com","subject":"Re: collab","body":"sounds good"}`, "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/webhooks/reply = %d: %s", rec.Code, rec.Body.String())
	}

	stats, err := a.Store.Stats(a.Config.SiteID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Replies != 1 {
		t.Errorf("Replies = %d, want 1", stats.Replies)
	}
}

func TestReplyWebhookRequiresSender(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, http.MethodPost, "/api/webhooks/reply", `{"subject":"s"}`, "secret")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing sender = %d, want 400", rec.Code)
	}
}

func TestOutreachStats(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, http.MethodGet, "/api/outreach/stats", "", "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/outreach/stats = %d", rec.Code)
	}
}
