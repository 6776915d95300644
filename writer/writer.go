// Package writer drafts blog posts. Generation uses a search-grounded model
// call so the post can cite current sources; a second editing pass asks the
// model for HTML fixes as structured snippets and applies them verbatim.
package writer

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BlogPost is a generated draft, ready for linking and media enrichment.
type BlogPost struct {
	Content   string `json:"content"`
	Keyword   string `json:"keyword"`
	Timestamp string `json:"timestamp"`
}

type groundedModel interface {
	Grounded(ctx context.Context, prompt string) (string, error)
}

// Generator produces keyword-targeted posts.
type Generator struct {
	model groundedModel
}

// NewGenerator wires a Generator.
func NewGenerator(model groundedModel) *Generator {
	return &Generator{model: model}
}

// Generate writes an HTML post targeting keyword.
func (g *Generator) Generate(ctx context.Context, keyword string) (*BlogPost, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("writer: empty keyword")
	}
	content, err := g.model.Grounded(ctx, generatePrompt(keyword))
	if err != nil {
		return nil, fmt.Errorf("writer: generate post for %q: %w", keyword, err)
	}
	content = stripCodeFence(content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("writer: empty post for %q", keyword)
	}
	return &BlogPost{
		Content:   content,
		Keyword:   keyword,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func generatePrompt(keyword string) string {
	return fmt.Sprintf(`You are an expert on the topic and your goal is to write a blog post that ranks 1st on Google for the keyword: "%s"

Write a 1300-2000 word blog post for this keyword. Include a key takeaway and FAQ section.
Format the entire post in clean, semantic HTML using:
- <h1> for the main title
- <h2> for section headers
- <p> for paragraphs
- <strong> for important terms
- <ul> and <li> for lists
- <a href="URL">text</a> for links

If you reference a source in the content, add an external link using proper <a> tags.
Example: According to <a href="https://harvard.edu/study">research from Harvard Medical School</a>, rucking improves cardiovascular health.

Return only the HTML-formatted blog post content.`, keyword)
}

// stripCodeFence unwraps content the model returned inside a markdown fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```html")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
