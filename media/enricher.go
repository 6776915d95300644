package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

const (
	// skipWords bounds prompt size: the opening of a post is assumed
	// image-free, so the first 200 words are left out of the placement
	// prompt unless the document is shorter than that.
	skipWords = 200

	// maxPlacements caps media per post.
	maxPlacements = 3
)

// jsonModel is the slice of the LLM client the enricher needs.
type jsonModel interface {
	JSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error)
}

// proposal is what the model suggests: where, what kind, and a creative
// direction. The URL comes later from the matching tool, never the model.
type proposal struct {
	InsertBefore string `json:"insertBefore"`
	MediaType    string `json:"mediaType"`
	Description  string `json:"description"`
}

// Enricher asks a model for placement proposals and resolves each one
// through the image or video capability.
type Enricher struct {
	model  jsonModel
	images ImageGenerator
	videos VideoFinder
}

// NewEnricher wires an Enricher from its collaborators.
func NewEnricher(model jsonModel, images ImageGenerator, videos VideoFinder) *Enricher {
	return &Enricher{model: model, images: images, videos: videos}
}

// Enhance proposes and resolves up to maxPlacements placements for doc.
// Every failure mode degrades: malformed model output yields an empty list,
// a failed tool call drops that one placement, and invalid URLs are filtered.
func (e *Enricher) Enhance(ctx context.Context, doc string) []Placement {
	raw, err := e.model.JSON(ctx, placementPrompt(truncateOpening(doc)), proposalSchema, 0.1)
	if err != nil {
		log.Printf("media: placement proposal failed: %v", err)
		return nil
	}

	var proposals []proposal
	if err := json.Unmarshal([]byte(raw), &proposals); err != nil {
		log.Printf("media: malformed placement JSON, skipping enrichment: %v", err)
		return nil
	}
	if len(proposals) > maxPlacements {
		proposals = proposals[:maxPlacements]
	}

	var placements []Placement
	for _, prop := range proposals {
		p := Placement{
			InsertBefore: prop.InsertBefore,
			MediaType:    prop.MediaType,
			Description:  prop.Description,
		}
		switch prop.MediaType {
		case TypeImage:
			if e.images == nil {
				log.Printf("media: dropping image placement, no image generator configured")
				continue
			}
			p.MediaURL, err = e.images.GenerateImage(ctx, prop.Description)
		case TypeVideo:
			if e.videos == nil {
				log.Printf("media: dropping video placement, no video finder configured")
				continue
			}
			p.MediaURL, err = e.videos.FindVideo(ctx, prop.Description)
		default:
			log.Printf("media: dropping placement with unknown type %q", prop.MediaType)
			continue
		}
		if err != nil {
			log.Printf("media: dropping %s placement: %v", prop.MediaType, err)
			continue
		}
		if !p.Valid() {
			log.Printf("media: dropping %s placement with invalid URL %q", p.MediaType, p.MediaURL)
			continue
		}
		placements = append(placements, p)
	}
	return placements
}

// Enrich is the full pass: propose, resolve, and splice. On any failure the
// original document comes back unchanged.
func (e *Enricher) Enrich(ctx context.Context, doc string) string {
	return Populate(doc, e.Enhance(ctx, doc))
}

// truncateOpening drops the first skipWords words of doc; documents shorter
// than the threshold are used whole.
func truncateOpening(doc string) string {
	words := strings.Fields(doc)
	if len(words) <= skipWords {
		return doc
	}
	return strings.Join(words[skipWords:], " ")
}

var proposalSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"insertBefore": {Type: genai.TypeString},
			"mediaType":    {Type: genai.TypeString, Enum: []string{TypeImage, TypeVideo}},
			"description":  {Type: genai.TypeString},
		},
		Required: []string{"insertBefore", "mediaType", "description"},
	},
}

func placementPrompt(doc string) string {
	return fmt.Sprintf(`You are a professional blog post editor. Your task is to enhance blog posts with relevant images and videos, but ONLY when they meaningfully contribute to the reader's understanding or experience.

Here's the blog post to enhance:
%s

INSTRUCTIONS:
1. Read the blog post and identify 2-3 good places to add media between paragraphs
2. For each place, decide whether an image or a video would be most helpful
3. For images, write the description like a director setting up the shot
4. For videos, describe what the ideal video would show or explain to the reader

Each media placement MUST:
- Directly help readers understand the content or provide valuable visual context
- ONLY be placed BETWEEN complete HTML elements (paragraphs, sections, list items)
- NEVER be placed within a paragraph, sentence, or HTML element
- Make sense in the overall context of the post

IMPORTANT RULES:
- The insertBefore value must be an EXACT copy-paste from the blog post, including all HTML tags and whitespace exactly as they appear
- Space out the media placements so they are not bunched together
- Limit media to 3 placements maximum
- Return ONLY the JSON array, nothing else`, doc)
}
