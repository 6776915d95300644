package scribe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scribeworks/scribe/writer"
)

type stubGenerator struct {
	post *writer.BlogPost
	err  error
}

func (s *stubGenerator) Generate(_ context.Context, keyword string) (*writer.BlogPost, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := *s.post
	p.Keyword = keyword
	return &p, nil
}

type stageFunc func(content string) string

type stubEditor struct{ fn stageFunc }

func (s stubEditor) EditPost(_ context.Context, content string) string { return s.fn(content) }

type stubLinker struct{ fn stageFunc }

func (s stubLinker) AddLinks(_ context.Context, content, _ string) string { return s.fn(content) }

type stubEnricher struct{ fn stageFunc }

func (s stubEnricher) Enrich(_ context.Context, doc string) string { return s.fn(doc) }

func appendStage(suffix string) stageFunc {
	return func(content string) string { return content + suffix }
}

func TestGenerateCompletePostRunsStagesInOrder(t *testing.T) {
	p := NewPipeline(
		&stubGenerator{post: &writer.BlogPost{Content: "draft"}},
		stubEditor{appendStage("+edit")},
		stubLinker{appendStage("+links")},
		stubEnricher{appendStage("+media")},
		time.Minute,
	)

	result, err := p.GenerateCompletePost(context.Background(), "kw", "https://example.com")
	if err != nil {
		t.Fatalf("GenerateCompletePost: %v", err)
	}
	if result.Status != "success" {
		t.Errorf("Status = %q", result.Status)
	}
	if result.Data.Content != "draft+edit+links+media" {
		t.Errorf("Content = %q, want edit then links then media", result.Data.Content)
	}
	if result.Data.Keyword != "kw" {
		t.Errorf("Keyword = %q", result.Data.Keyword)
	}
}

func TestGenerateCompletePostGeneratorFailureIsFatal(t *testing.T) {
	p := NewPipeline(&stubGenerator{err: errors.New("boom")}, nil, nil, nil, time.Minute)

	result, err := p.GenerateCompletePost(context.Background(), "kw", "https://example.com")
	if err == nil {
		t.Fatal("GenerateCompletePost succeeded, want error")
	}
	if result.Status != "error" || result.Keyword != "kw" {
		t.Errorf("result = %+v", result)
	}
}

func TestGenerateCompletePostNilStagesAreSkipped(t *testing.T) {
	p := NewPipeline(&stubGenerator{post: &writer.BlogPost{Content: "draft"}}, nil, nil, nil, time.Minute)

	result, err := p.GenerateCompletePost(context.Background(), "kw", "https://example.com")
	if err != nil {
		t.Fatalf("GenerateCompletePost: %v", err)
	}
	if result.Data.Content != "draft" {
		t.Errorf("Content = %q, want untouched draft", result.Data.Content)
	}
}
