// Package linking adds internal links to a generated post. The site's post
// inventory comes from its sitemap; a schema-constrained model call suggests
// contextual anchors per content segment, and valid suggestions are spliced
// in as <a> tags. Like media enrichment, linking is best-effort: on any
// failure the content passes through unchanged.
package linking

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"math/rand"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/genai"

	"github.com/scribeworks/scribe/sitemap"
)

// segmentWords is the size of each content slice sent to the model. Whole
// posts overflow useful prompt size and bias suggestions toward the opening.
const segmentWords = 500

// Suggestion is one proposed internal link.
type Suggestion struct {
	AnchorText string `json:"anchor_text"`
	TargetURL  string `json:"target_url"`
	Context    string `json:"context"`
	Reasoning  string `json:"reasoning"`
}

type jsonModel interface {
	JSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error)
}

// postSource is satisfied by sitemap.Cache.
type postSource interface {
	Posts(ctx context.Context, baseURL string) ([]sitemap.Post, error)
}

// Linker suggests and splices internal links.
type Linker struct {
	model jsonModel
	posts postSource
}

// New wires a Linker.
func New(model jsonModel, posts postSource) *Linker {
	return &Linker{model: model, posts: posts}
}

// AddLinks returns content with internal links to baseURL's posts spliced
// in. Each target URL and each anchor text is used at most once.
func (l *Linker) AddLinks(ctx context.Context, content, baseURL string) string {
	posts, err := l.posts.Posts(ctx, baseURL)
	if err != nil {
		log.Printf("linking: sitemap fetch failed, skipping links: %v", err)
		return content
	}
	if len(posts) == 0 {
		return content
	}

	suggestions := l.suggestSegmented(ctx, content, posts)
	if len(suggestions) == 0 {
		return content
	}
	return splice(content, suggestions)
}

// suggestSegmented walks the content in segments, asking for 2-3 links per
// segment against the posts not yet used, and dedupes URLs across segments.
func (l *Linker) suggestSegmented(ctx context.Context, content string, posts []sitemap.Post) []Suggestion {
	remaining := make([]sitemap.Post, len(posts))
	copy(remaining, posts)

	words := strings.Fields(content)
	var all []Suggestion
	used := make(map[string]bool)

	for start := 0; start < len(words); start += segmentWords {
		end := start + segmentWords
		if end > len(words) {
			end = len(words)
		}
		segment := strings.Join(words[start:end], " ")
		if len(remaining) == 0 {
			break
		}

		// Shuffle to eliminate position bias in the model's choices.
		shuffled := make([]sitemap.Post, len(remaining))
		copy(shuffled, remaining)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		raw, err := l.model.JSON(ctx, suggestionPrompt(segment, shuffled), suggestionSchema, 0)
		if err != nil {
			log.Printf("linking: suggestion call failed for segment: %v", err)
			continue
		}
		var batch []Suggestion
		if err := json.Unmarshal([]byte(raw), &batch); err != nil {
			log.Printf("linking: malformed suggestion JSON: %v", err)
			continue
		}

		for _, s := range batch {
			if s.AnchorText == "" || s.TargetURL == "" || used[s.TargetURL] {
				continue
			}
			used[s.TargetURL] = true
			all = append(all, s)
		}
		remaining = withoutUsed(remaining, used)
	}
	return all
}

func withoutUsed(posts []sitemap.Post, used map[string]bool) []sitemap.Post {
	var out []sitemap.Post
	for _, p := range posts {
		if !used[p.URL] {
			out = append(out, p)
		}
	}
	return out
}

// splice replaces the first occurrence of each anchor with a link, skipping
// anchors that are missing, repeated, or already inside an existing <a>.
func splice(content string, suggestions []Suggestion) string {
	linked := existingLinkTexts(content)
	usedAnchors := make(map[string]bool)

	for _, s := range suggestions {
		if usedAnchors[s.AnchorText] {
			continue
		}
		usedAnchors[s.AnchorText] = true

		if !strings.Contains(content, s.AnchorText) {
			continue
		}
		if insideExistingLink(linked, s.AnchorText) {
			continue
		}
		tag := fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(s.TargetURL), s.AnchorText)
		content = strings.Replace(content, s.AnchorText, tag, 1)
	}
	return content
}

// existingLinkTexts returns the text of every <a> already in the document.
func existingLinkTexts(content string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	var texts []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	return texts
}

func insideExistingLink(linkTexts []string, anchor string) bool {
	for _, t := range linkTexts {
		if strings.Contains(t, anchor) {
			return true
		}
	}
	return false
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"anchor_text": {Type: genai.TypeString},
			"target_url":  {Type: genai.TypeString},
			"context":     {Type: genai.TypeString},
			"reasoning":   {Type: genai.TypeString},
		},
		Required: []string{"anchor_text", "target_url", "context", "reasoning"},
	},
}

func suggestionPrompt(segment string, posts []sitemap.Post) string {
	urls := make([]string, len(posts))
	for i, p := range posts {
		urls[i] = p.URL
	}
	available, _ := json.MarshalIndent(urls, "", "  ")
	return fmt.Sprintf(`You are an expert content editor specializing in internal linking. Analyze this content segment and suggest 2-3 high-value internal links from our available posts.

Available posts for linking:
%s

Content segment to analyze:
%s

Guidelines for good linking:
- Use natural, contextual anchor text (no "click here" or "read more")
- Ensure links are topically relevant
- The anchor_text must exactly match the text in the content
- The anchor text should make sense given the post you are linking to
- Only suggest links to posts from the available posts list
- Suggest exactly 2-3 links for this segment, unless there are no good matches

Return a list of suggested internal links with their anchor text, target URL, context, and reasoning.`, available, segment)
}
