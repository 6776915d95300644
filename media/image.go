package media

import (
	"context"
	"fmt"
	"log"
)

// ImageGenerator turns a short creative direction into a hosted image URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, direction string) (string, error)
}

// VideoFinder turns a short vision statement into a video URL.
type VideoFinder interface {
	FindVideo(ctx context.Context, vision string) (string, error)
}

// textModel is the slice of the LLM client the tools need.
type textModel interface {
	Text(ctx context.Context, prompt string, temperature float32) (string, error)
}

// generator is satisfied by getimg.Client.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// uploader is satisfied by wordpress.Client.
type uploader interface {
	UploadFromURL(ctx context.Context, imageURL, fallbackAlt string) (string, error)
}

// ImageTool generates an AI image for a creative direction: the direction is
// expanded into a detailed generation prompt by a secondary model call, the
// image is generated, and the result is uploaded to the content backend.
type ImageTool struct {
	model    textModel
	images   generator
	uploader uploader
}

// NewImageTool wires an ImageTool from its three collaborators.
func NewImageTool(model textModel, images generator, up uploader) *ImageTool {
	return &ImageTool{model: model, images: images, uploader: up}
}

// GenerateImage returns the hosted URL for a freshly generated image. If the
// upload to the content backend fails, the raw generation URL is returned as
// a fallback; placement validation will filter it out. A generation failure
// is an error, which downstream treats as "no media".
func (t *ImageTool) GenerateImage(ctx context.Context, direction string) (string, error) {
	detailed, err := t.model.Text(ctx, enhanceImagePrompt(direction), 0.7)
	if err != nil {
		return "", fmt.Errorf("media: enhance image prompt: %w", err)
	}

	rawURL, err := t.images.Generate(ctx, detailed)
	if err != nil {
		return "", fmt.Errorf("media: generate image: %w", err)
	}

	hostedURL, err := t.uploader.UploadFromURL(ctx, rawURL, direction)
	if err != nil {
		log.Printf("media: upload failed, falling back to generation URL: %v", err)
		return rawURL, nil
	}
	return hostedURL, nil
}

func enhanceImagePrompt(direction string) string {
	return fmt.Sprintf(`Create a highly detailed image generation prompt based on this concept: %q

Include specific details about:
- Composition and layout
- Lighting and atmosphere
- Colors and tone
- Style and artistic approach
- Important elements and their relationships
- Mood and feeling

Format as a single, detailed paragraph that flows naturally.
Focus on visual elements that AI image generators excel at.
Avoid technical or diagrammatic elements.`, direction)
}
