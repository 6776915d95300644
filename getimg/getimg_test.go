package getimg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateReturnsHostedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["response_format"] != "url" {
			t.Errorf("response_format = %v, want url", body["response_format"])
		}
		if body["prompt"] != "a forest trail at dawn" {
			t.Errorf("prompt = %v", body["prompt"])
		}
		w.Write([]byte(`{"url":"https://cdn.getimg.example/img.jpg"}`))
	}))
	defer server.Close()

	c := New("key", server.URL, 5*time.Second)
	url, err := c.Generate(context.Background(), "a forest trail at dawn")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if url != "https://cdn.getimg.example/img.jpg" {
		t.Errorf("url = %q", url)
	}
}

func TestGenerateNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New("key", server.URL, 5*time.Second)
	c.retryDelay = time.Millisecond
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestGenerateMissingURLIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"seed":1}`))
	}))
	defer server.Close()

	c := New("key", server.URL, 5*time.Second)
	c.retryDelay = time.Millisecond
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for body without url")
	}
}
