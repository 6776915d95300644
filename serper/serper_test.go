package serper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	c := New("test-key", 5*time.Second).WithBaseURL(server.URL)
	c.retryDelay = time.Millisecond
	return c, server
}

func TestVideosParsesResults(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("X-API-KEY = %q, want %q", got, "test-key")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"videos":[{"title":"Rucking 101","link":"https://www.youtube.com/watch?v=abc123","snippet":"intro"}]}`))
	})
	defer server.Close()

	videos, err := c.Videos(context.Background(), "rucking basics")
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	if videos[0].Link != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("Link = %q", videos[0].Link)
	}
}

func TestVideosEmptyResponse(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer server.Close()

	videos, err := c.Videos(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}
	if len(videos) != 0 {
		t.Fatalf("expected no videos, got %d", len(videos))
	}
}

func TestSearchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"organic":[{"title":"t","link":"https://example.com","snippet":"s","position":1}]}`))
	})
	defer server.Close()

	results, err := c.Search(context.Background(), "example", 10)
	if err != nil {
		t.Fatalf("Search failed after retries: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestSearchGivesUpAfterRetries(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	if _, err := c.Search(context.Background(), "example", 10); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestScrapePrefersTextField(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"page text","content":"fallback"}`))
	})
	defer server.Close()

	text, err := c.Scrape(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if text != "page text" {
		t.Errorf("text = %q, want %q", text, "page text")
	}
}

func TestScrapeNoContent(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer server.Close()

	if _, err := c.Scrape(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error for response without text content")
	}
}
