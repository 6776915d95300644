package linking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/scribeworks/scribe/sitemap"
)

type stubModel struct {
	responses []string
	err       error
	prompts   []string
}

func (s *stubModel) JSON(_ context.Context, prompt string, _ *genai.Schema, _ float32) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "[]", nil
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

type stubPosts struct {
	posts []sitemap.Post
	err   error
}

func (s *stubPosts) Posts(context.Context, string) ([]sitemap.Post, error) {
	return s.posts, s.err
}

func somePosts() []sitemap.Post {
	return []sitemap.Post{
		{URL: "https://example.com/coffee-brewing"},
		{URL: "https://example.com/espresso-machines"},
	}
}

func TestAddLinksSplicesSuggestion(t *testing.T) {
	model := &stubModel{responses: []string{
		`[{"anchor_text":"brewing coffee","target_url":"https://example.com/coffee-brewing","context":"c","reasoning":"r"}]`,
	}}
	l := New(model, &stubPosts{posts: somePosts()})

	in := "<p>Everything about brewing coffee at home.</p>"
	got := l.AddLinks(context.Background(), in, "https://example.com")

	want := `<a href="https://example.com/coffee-brewing">brewing coffee</a>`
	if !strings.Contains(got, want) {
		t.Fatalf("AddLinks = %q, want it to contain %q", got, want)
	}
}

func TestAddLinksSitemapFailurePassesThrough(t *testing.T) {
	l := New(&stubModel{}, &stubPosts{err: errors.New("boom")})

	in := "<p>unchanged</p>"
	if got := l.AddLinks(context.Background(), in, "https://example.com"); got != in {
		t.Fatalf("AddLinks = %q, want input unchanged", got)
	}
}

func TestAddLinksModelFailurePassesThrough(t *testing.T) {
	l := New(&stubModel{err: errors.New("boom")}, &stubPosts{posts: somePosts()})

	in := "<p>unchanged</p>"
	if got := l.AddLinks(context.Background(), in, "https://example.com"); got != in {
		t.Fatalf("AddLinks = %q, want input unchanged", got)
	}
}

func TestAddLinksNoPostsPassesThrough(t *testing.T) {
	model := &stubModel{}
	l := New(model, &stubPosts{})

	in := "<p>unchanged</p>"
	if got := l.AddLinks(context.Background(), in, "https://example.com"); got != in {
		t.Fatalf("AddLinks = %q, want input unchanged", got)
	}
	if len(model.prompts) != 0 {
		t.Fatalf("model called %d times with no posts available", len(model.prompts))
	}
}

func TestSpliceLinksFirstOccurrenceOnly(t *testing.T) {
	in := "<p>pour over, then pour over again</p>"
	got := splice(in, []Suggestion{
		{AnchorText: "pour over", TargetURL: "https://example.com/pour-over"},
	})

	if n := strings.Count(got, "<a href="); n != 1 {
		t.Fatalf("got %d links, want 1:\n%s", n, got)
	}
	if !strings.HasPrefix(got, `<p><a href="https://example.com/pour-over">pour over</a>, then pour over`) {
		t.Fatalf("first occurrence not linked:\n%s", got)
	}
}

func TestSpliceSkipsMissingAnchor(t *testing.T) {
	in := "<p>nothing relevant here</p>"
	got := splice(in, []Suggestion{
		{AnchorText: "cold brew", TargetURL: "https://example.com/cold-brew"},
	})
	if got != in {
		t.Fatalf("splice = %q, want input unchanged", got)
	}
}

func TestSpliceSkipsTextInsideExistingLink(t *testing.T) {
	in := `<p>Read our <a href="/old">espresso guide</a> today.</p>`
	got := splice(in, []Suggestion{
		{AnchorText: "espresso guide", TargetURL: "https://example.com/espresso"},
	})
	if got != in {
		t.Fatalf("splice modified text inside an existing link:\n%s", got)
	}
}

func TestSpliceDedupesAnchors(t *testing.T) {
	in := "<p>latte art and more latte art</p>"
	got := splice(in, []Suggestion{
		{AnchorText: "latte art", TargetURL: "https://example.com/a"},
		{AnchorText: "latte art", TargetURL: "https://example.com/b"},
	})
	if n := strings.Count(got, "<a href="); n != 1 {
		t.Fatalf("got %d links, want 1:\n%s", n, got)
	}
}

func TestSuggestSegmentedDedupesURLs(t *testing.T) {
	dup := `[{"anchor_text":"first","target_url":"https://example.com/coffee-brewing","context":"c","reasoning":"r"}]`
	model := &stubModel{responses: []string{dup, dup}}
	l := New(model, &stubPosts{posts: somePosts()})

	long := strings.Repeat("word ", segmentWords) + "first tail"
	got := l.suggestSegmented(context.Background(), long, somePosts())

	if len(got) != 1 {
		t.Fatalf("suggestSegmented returned %d suggestions, want 1 after URL dedup", len(got))
	}
}

func TestSuggestSegmentedSegmentsLongContent(t *testing.T) {
	model := &stubModel{}
	l := New(model, &stubPosts{posts: somePosts()})

	long := strings.Repeat("word ", segmentWords*2+10)
	l.suggestSegmented(context.Background(), long, somePosts())

	if len(model.prompts) != 3 {
		t.Fatalf("model called %d times, want 3 segments", len(model.prompts))
	}
}

func TestSuggestSegmentedSkipsMalformedJSON(t *testing.T) {
	model := &stubModel{responses: []string{"not json"}}
	l := New(model, &stubPosts{posts: somePosts()})

	got := l.suggestSegmented(context.Background(), "short content", somePosts())
	if len(got) != 0 {
		t.Fatalf("suggestSegmented = %v, want none for malformed JSON", got)
	}
}
