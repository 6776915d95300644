// Package sitemap fetches the post inventory of a WordPress-style site by
// walking sitemap.xml to the post sitemap. The inventory drives internal
// link suggestions and outreach template building.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Mozilla/5.0 (compatible; SitemapFetcher/1.0)"

// Post is one entry from a post sitemap.
type Post struct {
	URL     string
	LastMod string
}

// Fetcher retrieves sitemaps over HTTP.
type Fetcher struct {
	http *http.Client
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{http: &http.Client{Timeout: timeout}}
}

type urlSet struct {
	URLs []struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod"`
	} `xml:"url"`
}

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// Posts fetches <baseURL>/sitemap.xml, locates the post sitemap inside the
// index, and returns its entries. A flat sitemap (no index) is parsed
// directly.
func (f *Fetcher) Posts(ctx context.Context, baseURL string) ([]Post, error) {
	indexURL := strings.TrimRight(baseURL, "/") + "/sitemap.xml"
	body, err := f.get(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("sitemap: fetch index: %w", err)
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		postURL := ""
		for _, sm := range index.Sitemaps {
			if strings.Contains(sm.Loc, "post-sitemap") {
				postURL = sm.Loc
				break
			}
		}
		if postURL == "" {
			return nil, fmt.Errorf("sitemap: no post sitemap in index at %s", indexURL)
		}
		body, err = f.get(ctx, postURL)
		if err != nil {
			return nil, fmt.Errorf("sitemap: fetch post sitemap: %w", err)
		}
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("sitemap: parse: %w", err)
	}
	posts := make([]Post, 0, len(set.URLs))
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		posts = append(posts, Post{URL: loc, LastMod: u.LastMod})
	}
	return posts, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml,text/xml,*/*")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return stripStylesheet(raw), nil
}

// stripStylesheet removes xml-stylesheet processing instructions, which some
// WordPress sitemap plugins emit and which trip up strict parsers.
func stripStylesheet(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	for {
		start := strings.Index(s, "<?xml-stylesheet")
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], "?>")
		if end == -1 {
			break
		}
		s = s[:start] + s[start+end+2:]
	}
	return []byte(s)
}
