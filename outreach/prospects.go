package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"google.golang.org/genai"

	"github.com/scribeworks/scribe/serper"
)

// excludedDomains are large platforms that never accept guest posts and
// drown out real prospects in search results.
var excludedDomains = []string{
	"youtube.com", "youtu.be",
	"reddit.com",
	"facebook.com", "fb.com",
	"instagram.com",
	"tiktok.com",
	"twitter.com", "x.com",
	"wikipedia.org",
	"amazon.com", "amazon.",
	"pinterest.com",
	"linkedin.com",
	"quora.com",
	"medium.com",
}

// searchTerm pairs a prospect category with the query used to find sites in
// it.
type searchTerm struct {
	Category   string `json:"category"`
	SearchTerm string `json:"search_term"`
}

type prospectModel interface {
	Text(ctx context.Context, prompt string, temperature float32) (string, error)
	JSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error)
}

type webSearcher interface {
	Search(ctx context.Context, query string, num int) ([]serper.Result, error)
}

// ProspectGenerator discovers backlink prospects for a blog: it distills the
// blog to a core phrase, expands that into website categories and search
// terms, and searches each term for candidate sites.
type ProspectGenerator struct {
	model    prospectModel
	searcher webSearcher
	store    *Store
}

// NewProspectGenerator wires a ProspectGenerator.
func NewProspectGenerator(model prospectModel, searcher webSearcher, store *Store) *ProspectGenerator {
	return &ProspectGenerator{model: model, searcher: searcher, store: store}
}

// Setup discovers prospects for the blog and stores them for siteID,
// replacing any unused prospects from earlier runs. It returns the number of
// prospects saved.
func (g *ProspectGenerator) Setup(ctx context.Context, siteID int64, blogTitle, blogDescription string) (int, error) {
	core, err := g.distillCorePhrase(ctx, blogTitle, blogDescription)
	if err != nil {
		return 0, err
	}
	log.Printf("outreach: core phrase for site %d: %q", siteID, core)

	categories, err := g.model.Text(ctx, categoriesPrompt(blogTitle, blogDescription, core), 0.7)
	if err != nil {
		return 0, fmt.Errorf("outreach: generate categories: %w", err)
	}

	terms, err := g.structureSearchTerms(ctx, categories, core)
	if err != nil {
		return 0, err
	}

	if err := g.store.ClearProspects(siteID); err != nil {
		return 0, fmt.Errorf("outreach: clear prospects: %w", err)
	}

	seen := make(map[string]bool)
	var prospects []Prospect
	for _, term := range terms {
		if term.SearchTerm == "" {
			continue
		}
		results, err := g.searcher.Search(ctx, term.SearchTerm, 100)
		if err != nil {
			log.Printf("outreach: search %q failed: %v", term.SearchTerm, err)
			continue
		}
		for _, r := range results {
			base, ok := baseURL(r.Link)
			if !ok || seen[base] || isExcluded(base) {
				continue
			}
			seen[base] = true
			prospects = append(prospects, Prospect{URL: base, SiteID: siteID, Category: term.Category})
		}
	}

	saved, err := g.store.SaveProspects(prospects)
	if err != nil {
		return 0, fmt.Errorf("outreach: save prospects: %w", err)
	}
	log.Printf("outreach: saved %d prospects for site %d across %d categories", saved, siteID, len(terms))
	return saved, nil
}

// distillCorePhrase reduces the blog to the single phrase that drives
// category and search-term generation.
func (g *ProspectGenerator) distillCorePhrase(ctx context.Context, blogTitle, blogDescription string) (string, error) {
	prompt := fmt.Sprintf(`Blog Title: %s
Blog Description: %s

Distill the above blog content to a single core phrase or word that best represents what this blog is about. For example, if it's about rucking, just return "rucking". If it's about Phase I Environmental Site Assessments, return "Phase I Environmental Site Assessments".

IMPORTANT: Return ONLY the core phrase with no additional text, labels, or formatting.`, blogTitle, blogDescription)

	out, err := g.model.Text(ctx, prompt, 0)
	if err != nil {
		return "", fmt.Errorf("outreach: distill core phrase: %w", err)
	}
	core := strings.TrimSpace(out)
	for _, prefix := range []string{"core phrase:", "the core phrase is", "the core phrase:"} {
		if strings.HasPrefix(strings.ToLower(core), prefix) {
			core = strings.TrimSpace(core[len(prefix):])
		}
	}
	if core == "" {
		return "", fmt.Errorf("outreach: empty core phrase for %q", blogTitle)
	}
	return core, nil
}

// structureSearchTerms turns free-text categories into category/query pairs,
// always prepending a "<core> blogs" term so same-niche blogs rank first.
func (g *ProspectGenerator) structureSearchTerms(ctx context.Context, categories, core string) ([]searchTerm, error) {
	prompt := fmt.Sprintf(`Core Topic: %s
Website Categories:
%s

For each of the above website categories, create a structured object with:
1. The category name
2. One specific search query that would help find websites in that category (e.g. "gardening supplies websites" or "large news sites")

The search query should be specific enough to find relevant websites but general enough to return a good number of results. If a specific category should be broken into multiple categories, do that. The categories should only be for websites that have a blog.`, core, categories)

	raw, err := g.model.JSON(ctx, prompt, searchTermSchema, 0.1)
	if err != nil {
		return nil, fmt.Errorf("outreach: structure search terms: %w", err)
	}
	var terms []searchTerm
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return nil, fmt.Errorf("outreach: parse search terms: %w", err)
	}
	return append([]searchTerm{{
		Category:   core + " Blog Sites",
		SearchTerm: core + " blogs",
	}}, terms...), nil
}

var searchTermSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category":    {Type: genai.TypeString},
			"search_term": {Type: genai.TypeString},
		},
		Required: []string{"category", "search_term"},
	},
}

func categoriesPrompt(blogTitle, blogDescription, core string) string {
	return fmt.Sprintf(`Blog Title: %s
Blog Description: %s

Given the above blog about %s, what are some types of websites that it could reach out to for backlinks?

For example, if this is a blog about gardening, potential website categories might include:
- Gardening blog sites (obviously make sure to include the exact niche as our blog)
- Gardening supply stores
- Plant identification resources
- Sustainable living websites
- Home improvement blogs
- Large news sites

List specific categories of websites that would be good backlink prospects.`, blogTitle, blogDescription, core)
}

// baseURL reduces a result link to its scheme://host origin.
func baseURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

func isExcluded(base string) bool {
	lower := strings.ToLower(base)
	for _, domain := range excludedDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}
