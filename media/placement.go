// Package media enriches an HTML blog post with images and videos. A
// schema-constrained model call proposes insertion points, explicit tools
// produce the media URLs, and Populate splices the fragments into the
// document. Enrichment is best-effort throughout: it degrades to fewer (or
// zero) placements but never blocks publication.
package media

import (
	"fmt"
	"html"
	"net/url"
	"strings"
)

// Media types a placement can carry.
const (
	TypeImage = "image"
	TypeVideo = "video"
)

// uploadPath is the content backend path every hosted image URL must
// reference. Raw generation URLs (the upload-failure fallback) lack it and
// are dropped during validation.
const uploadPath = "/wp-content/uploads"

// Placement is one decision to insert one media fragment before a literal
// anchor substring of the document.
type Placement struct {
	InsertBefore string `json:"insertBefore"`
	MediaType    string `json:"mediaType"`
	MediaURL     string `json:"mediaUrl"`
	Description  string `json:"description"`
}

// Valid reports whether the placement has all mandatory fields and a URL
// consistent with its declared type.
func (p Placement) Valid() bool {
	if p.InsertBefore == "" || p.MediaType == "" || p.MediaURL == "" {
		return false
	}
	switch p.MediaType {
	case TypeImage:
		return strings.Contains(p.MediaURL, uploadPath)
	case TypeVideo:
		return videoID(p.MediaURL) != ""
	default:
		return false
	}
}

// Fragment renders the HTML inserted for this placement: an <img> tag for
// images, an iframe embed keyed by the video identifier for videos.
func (p Placement) Fragment() string {
	switch p.MediaType {
	case TypeImage:
		return fmt.Sprintf(`<img src="%s" alt="%s" />`,
			html.EscapeString(p.MediaURL), html.EscapeString(p.Description))
	case TypeVideo:
		return fmt.Sprintf(`<iframe src="https://www.youtube.com/embed/%s" title="%s" frameborder="0" allowfullscreen></iframe>`,
			html.EscapeString(videoID(p.MediaURL)), html.EscapeString(p.Description))
	}
	return ""
}

// Populate splices each valid placement's fragment into doc, immediately
// before the first literal occurrence of its anchor. Placements whose anchor
// is not found verbatim are skipped, never fuzzy-matched. Insertions only
// prepend content ahead of existing text, so the document never shrinks and
// earlier splices cannot invalidate later anchors.
func Populate(doc string, placements []Placement) string {
	for _, p := range placements {
		if !p.Valid() {
			continue
		}
		idx := strings.Index(doc, p.InsertBefore)
		if idx == -1 {
			continue
		}
		doc = doc[:idx] + p.Fragment() + "\n" + doc[idx:]
	}
	return doc
}

// videoID extracts the video identifier from a full watch URL. It returns ""
// for anything that is not a well-formed URL on the video host.
func videoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Hostname() {
	case "www.youtube.com", "youtube.com":
		if u.Path != "/watch" {
			return ""
		}
		return u.Query().Get("v")
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	}
	return ""
}
