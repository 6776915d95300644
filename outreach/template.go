package outreach

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/scribeworks/scribe/sitemap"
)

// Site describes the blog running the campaign, as pitched in outreach
// emails.
type Site struct {
	ID          int64
	Name        string
	URL         string
	Description string
	Founder     string
}

type textModel interface {
	Text(ctx context.Context, prompt string, temperature float32) (string, error)
}

type postSource interface {
	Posts(ctx context.Context, baseURL string) ([]sitemap.Post, error)
}

// TemplateMaker writes the pitch body appended to every outreach email in a
// campaign: a short collaboration ask personalized to the target blog.
type TemplateMaker struct {
	model textModel
	posts postSource
}

// NewTemplateMaker wires a TemplateMaker.
func NewTemplateMaker(model textModel, posts postSource) *TemplateMaker {
	return &TemplateMaker{model: model, posts: posts}
}

// CreateTemplate generates the outreach pitch for site, personalized against
// targetURL's recent content.
func (t *TemplateMaker) CreateTemplate(ctx context.Context, site Site, targetURL string) (string, error) {
	targetPost := t.recentPost(ctx, targetURL)
	ourPost := t.recentPost(ctx, site.URL)
	if ourPost == "" {
		return "", fmt.Errorf("outreach: no recent post found on %s to cite as sample work", site.URL)
	}

	body, err := t.model.Text(ctx, templatePrompt(site, targetURL, targetPost, ourPost), 0.7)
	if err != nil {
		return "", fmt.Errorf("outreach: generate template: %w", err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("outreach: empty template for site %d", site.ID)
	}
	return body, nil
}

// recentPost returns the newest real post on a site, skipping blog index
// pages. Empty on any failure.
func (t *TemplateMaker) recentPost(ctx context.Context, siteURL string) string {
	posts, err := t.posts.Posts(ctx, siteURL)
	if err != nil {
		log.Printf("outreach: fetch recent post from %s: %v", siteURL, err)
		return ""
	}
	for _, p := range posts {
		trimmed := strings.TrimSuffix(p.URL, "/")
		if !strings.HasSuffix(trimmed, "/blog") {
			return p.URL
		}
	}
	if len(posts) > 0 {
		return posts[0].URL
	}
	return ""
}

func templatePrompt(site Site, targetURL, targetPost, ourPost string) string {
	if targetPost == "" {
		targetPost = "No recent post found"
	}
	return fmt.Sprintf(`You are a professional outreach specialist. Create a personalized email to the owner of the blog at %s.

I've found this recent post from their site:
%s

About my blog:
Name: %s
Description: %s

Use this template structure, but personalize it based on their blog content:

My name is %s and I am the founder of %s.

Your readers can benefit from [how their readers can benefit from this blog's content]. Here's a sample of my most recent work: %s

I wanted to see if we could talk about collaborating together via link exchange and/or contributing to a guest post on your site.

Let me know what you think.

Best,

%s

IMPORTANT:
1. Keep the introduction exactly as "I am the founder of %s"
2. Personalize ONLY the part about "how their readers can benefit" based on the blog's content
3. Keep all other parts of the template exactly as shown
4. Return only the email body, no subject line`,
		targetURL, targetPost, site.Name, site.Description,
		site.Founder, site.Name, ourPost, site.Founder, site.Name)
}
