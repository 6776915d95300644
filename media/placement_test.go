package media

import (
	"strings"
	"testing"
)

const doc = `<h1>How to Start Rucking</h1>
<p>Rucking is walking with a weighted pack.</p>
<p>Start with a light load and build up slowly.</p>
<p>Good boots matter more than the pack itself.</p>`

func TestPopulateInsertsInListOrder(t *testing.T) {
	placements := []Placement{
		{
			InsertBefore: "<p>Start with a light load and build up slowly.</p>",
			MediaType:    TypeImage,
			MediaURL:     "https://example.com/wp-content/uploads/2025/08/pack.jpg",
			Description:  "a weighted rucking pack",
		},
		{
			InsertBefore: "<p>Good boots matter more than the pack itself.</p>",
			MediaType:    TypeVideo,
			MediaURL:     "https://www.youtube.com/watch?v=abc123",
			Description:  "choosing rucking boots",
		},
	}

	out := Populate(doc, placements)

	imgIdx := strings.Index(out, `<img src="https://example.com/wp-content/uploads/2025/08/pack.jpg"`)
	vidIdx := strings.Index(out, `<iframe src="https://www.youtube.com/embed/abc123"`)
	if imgIdx == -1 {
		t.Fatal("image fragment missing from output")
	}
	if vidIdx == -1 {
		t.Fatal("video fragment missing from output")
	}
	if imgIdx > vidIdx {
		t.Error("fragments out of placement-list order")
	}

	// Each fragment sits immediately before its anchor.
	for _, p := range placements {
		frag := p.Fragment() + "\n" + p.InsertBefore
		if !strings.Contains(out, frag) {
			t.Errorf("fragment not spliced directly before anchor %q", p.InsertBefore)
		}
	}
}

func TestPopulateNeverShortens(t *testing.T) {
	placements := []Placement{
		{InsertBefore: "<p>Rucking is walking with a weighted pack.</p>", MediaType: TypeImage,
			MediaURL: "https://example.com/wp-content/uploads/a.jpg", Description: "d"},
		{InsertBefore: "not present anywhere", MediaType: TypeImage,
			MediaURL: "https://example.com/wp-content/uploads/b.jpg", Description: "d"},
		{InsertBefore: "", MediaType: TypeVideo, MediaURL: "https://www.youtube.com/watch?v=x", Description: "d"},
	}
	out := Populate(doc, placements)
	if len(out) < len(doc) {
		t.Errorf("document shrank: %d -> %d", len(doc), len(out))
	}
	// Exactly one anchor was found verbatim, so exactly one fragment goes in.
	if got := strings.Count(out, "<img "); got != 1 {
		t.Errorf("inserted %d image fragments, want 1", got)
	}
	if strings.Count(out, "<iframe ") != 0 {
		t.Error("placement with empty anchor must not be inserted")
	}
}

func TestPopulateEmptyPlacementsReturnsInputUnchanged(t *testing.T) {
	if out := Populate(doc, nil); out != doc {
		t.Error("Populate(doc, nil) altered the document")
	}
	if out := Populate(doc, []Placement{}); out != doc {
		t.Error("Populate(doc, []) altered the document")
	}
}

func TestPopulateSkipsUnfoundAnchor(t *testing.T) {
	placements := []Placement{
		{InsertBefore: "<p>This paragraph does not exist.</p>", MediaType: TypeImage,
			MediaURL: "https://example.com/wp-content/uploads/a.jpg", Description: "d"},
	}
	if out := Populate(doc, placements); out != doc {
		t.Error("unfound anchor must be skipped, not fuzzy-matched")
	}
}

func TestValidRequiresMandatoryFields(t *testing.T) {
	base := Placement{
		InsertBefore: "<p>x</p>",
		MediaType:    TypeImage,
		MediaURL:     "https://example.com/wp-content/uploads/a.jpg",
		Description:  "d",
	}
	if !base.Valid() {
		t.Fatal("base placement should be valid")
	}

	tests := []struct {
		name   string
		mutate func(*Placement)
	}{
		{"missing insertBefore", func(p *Placement) { p.InsertBefore = "" }},
		{"missing mediaType", func(p *Placement) { p.MediaType = "" }},
		{"missing mediaUrl", func(p *Placement) { p.MediaURL = "" }},
		{"unknown mediaType", func(p *Placement) { p.MediaType = "gif" }},
	}
	for _, tt := range tests {
		p := base
		tt.mutate(&p)
		if p.Valid() {
			t.Errorf("%s: placement should be invalid", tt.name)
		}
	}
}

func TestValidImageRequiresUploadPath(t *testing.T) {
	p := Placement{
		InsertBefore: "<p>x</p>",
		MediaType:    TypeImage,
		MediaURL:     "https://cdn.getimg.example/raw.jpg", // raw generation fallback
		Description:  "d",
	}
	if p.Valid() {
		t.Error("image URL outside the upload path must be dropped")
	}
}

func TestValidVideoRequiresFullWatchURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc123", true},
		{"https://youtube.com/watch?v=abc123", true},
		{"https://youtu.be/abc123", true},
		{"https://www.youtube.com/watch", false},
		{"https://vimeo.com/12345", false},
		{"Error finding video: boom", false},
	}
	for _, tt := range tests {
		p := Placement{InsertBefore: "<p>x</p>", MediaType: TypeVideo, MediaURL: tt.url, Description: "d"}
		if got := p.Valid(); got != tt.want {
			t.Errorf("Valid() with url %q = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFragmentEscapesAttributes(t *testing.T) {
	p := Placement{
		MediaType:   TypeImage,
		MediaURL:    "https://example.com/wp-content/uploads/a.jpg",
		Description: `a "quoted" <description>`,
	}
	frag := p.Fragment()
	if strings.Contains(frag, `"quoted"`) || strings.Contains(frag, "<description>") {
		t.Errorf("alt text not escaped: %s", frag)
	}
}

func TestVideoID(t *testing.T) {
	tests := []struct{ url, want string }{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/playlist?list=PL1", ""},
		{"://bad", ""},
	}
	for _, tt := range tests {
		if got := videoID(tt.url); got != tt.want {
			t.Errorf("videoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
