package scribe

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/scribeworks/scribe/writer"
)

type postGenerator interface {
	Generate(ctx context.Context, keyword string) (*writer.BlogPost, error)
}

type postEditor interface {
	EditPost(ctx context.Context, content string) string
}

type linkAdder interface {
	AddLinks(ctx context.Context, content, baseURL string) string
}

type mediaEnricher interface {
	Enrich(ctx context.Context, doc string) string
}

// PipelineResult is the outcome of one content generation run.
type PipelineResult struct {
	Status  string           `json:"status"`
	Keyword string           `json:"keyword"`
	Data    *writer.BlogPost `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Pipeline runs the complete content flow: draft a post for a keyword, fix
// its HTML, add internal links against the site's existing posts, and
// enrich it with images and videos. Only generation is fatal; the later
// stages are best-effort and pass content through on failure.
type Pipeline struct {
	generator postGenerator
	editor    postEditor
	linker    linkAdder
	enricher  mediaEnricher
	timeout   time.Duration
}

// NewPipeline wires a Pipeline. editor, linker, and enricher may be nil, in
// which case their stage is skipped.
func NewPipeline(generator postGenerator, editor postEditor, linker linkAdder, enricher mediaEnricher, timeout time.Duration) *Pipeline {
	return &Pipeline{
		generator: generator,
		editor:    editor,
		linker:    linker,
		enricher:  enricher,
		timeout:   timeout,
	}
}

// GenerateCompletePost produces a fully enriched post for keyword. baseURL
// is the blog whose sitemap feeds the internal linking stage.
func (p *Pipeline) GenerateCompletePost(ctx context.Context, keyword, baseURL string) (*PipelineResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	post, err := p.generator.Generate(ctx, keyword)
	if err != nil {
		return &PipelineResult{Status: "error", Keyword: keyword, Message: err.Error()},
			fmt.Errorf("scribe: generate post: %w", err)
	}
	log.Printf("scribe: drafted post for %q in %s (%d bytes)", keyword, time.Since(start).Round(time.Second), len(post.Content))

	if p.editor != nil {
		post.Content = p.editor.EditPost(ctx, post.Content)
	}
	if p.linker != nil {
		post.Content = p.linker.AddLinks(ctx, post.Content, baseURL)
	}
	if p.enricher != nil {
		post.Content = p.enricher.Enrich(ctx, post.Content)
	}

	log.Printf("scribe: completed post for %q in %s", keyword, time.Since(start).Round(time.Second))
	return &PipelineResult{Status: "success", Keyword: keyword, Data: post}, nil
}
