package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scribeworks/scribe/serper"
)

// videoSearcher is satisfied by serper.Client.
type videoSearcher interface {
	Videos(ctx context.Context, query string) ([]serper.Video, error)
}

// watchPrefix is the only accepted shape for a model-selected video URL.
// Anything else falls back to the first search result.
const watchPrefix = "https://www.youtube.com/watch?v="

// VideoTool finds an existing video matching a vision statement: the vision
// is distilled into a short search query, candidates are fetched, and a
// strict URL-only model call picks the best match.
type VideoTool struct {
	model    textModel
	searcher videoSearcher
}

// NewVideoTool wires a VideoTool.
func NewVideoTool(model textModel, searcher videoSearcher) *VideoTool {
	return &VideoTool{model: model, searcher: searcher}
}

// FindVideo returns the URL of the best matching video. If the model's pick
// does not validate as a full watch URL, the first search result is used
// instead; with no results at all the lookup fails.
func (t *VideoTool) FindVideo(ctx context.Context, vision string) (string, error) {
	query, err := t.model.Text(ctx, searchQueryPrompt(vision), 0.7)
	if err != nil {
		return "", fmt.Errorf("media: derive search query: %w", err)
	}
	query = strings.TrimSpace(query)

	videos, err := t.searcher.Videos(ctx, query)
	if err != nil {
		return "", fmt.Errorf("media: video search: %w", err)
	}
	if len(videos) == 0 {
		return "", fmt.Errorf("media: no videos found for query %q", query)
	}

	choice, err := t.model.Text(ctx, selectionPrompt(vision, videos), 0.1)
	if err != nil {
		return "", fmt.Errorf("media: select video: %w", err)
	}
	choice = strings.TrimSpace(choice)

	if strings.HasPrefix(choice, watchPrefix) {
		return choice, nil
	}
	if videos[0].Link != "" {
		return videos[0].Link, nil
	}
	return "", fmt.Errorf("media: selection %q is not a video URL and no fallback result exists", choice)
}

func searchQueryPrompt(vision string) string {
	return fmt.Sprintf(`Convert this video vision into a short YouTube search query:
Vision: %s
Create a search query that will find videos matching this vision.
Return only 2-5 words that would work best as a YouTube search.`, vision)
}

func selectionPrompt(vision string, videos []serper.Video) string {
	candidates, _ := json.MarshalIndent(videos, "", "  ")
	return fmt.Sprintf(`Given this vision for a video:
%q

Select the best matching video from these results:
%s

Consider:
- How well it matches the vision
- Video quality and professionalism
- Educational value

IMPORTANT: You must return ONLY the complete YouTube URL with no additional text.
For example: https://www.youtube.com/watch?v=abcdef
Do not include any explanations, just the URL.`, vision, candidates)
}
