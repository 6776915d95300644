package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

// fix is one HTML formatting issue the model found, with the exact snippet
// to replace and its corrected form.
type fix struct {
	Issue        string `json:"issue"`
	OriginalHTML string `json:"originalHtml"`
	FixedHTML    string `json:"fixedHtml"`
	Explanation  string `json:"explanation"`
}

type jsonModel interface {
	JSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error)
}

// Editor runs an HTML cleanup pass over generated posts. It only applies
// fixes whose original snippet matches the document exactly; anything else
// is skipped, and any failure returns the post untouched.
type Editor struct {
	model jsonModel
}

// NewEditor wires an Editor.
func NewEditor(model jsonModel) *Editor {
	return &Editor{model: model}
}

// EditPost fixes HTML formatting issues in content. The pass is best-effort.
func (e *Editor) EditPost(ctx context.Context, content string) string {
	raw, err := e.model.JSON(ctx, editPrompt(content), fixSchema, 0.1)
	if err != nil {
		log.Printf("writer: html analysis failed, keeping post as-is: %v", err)
		return content
	}
	var fixes []fix
	if err := json.Unmarshal([]byte(raw), &fixes); err != nil {
		log.Printf("writer: malformed html analysis: %v", err)
		return content
	}

	for _, f := range fixes {
		if f.OriginalHTML == "" || f.OriginalHTML == f.FixedHTML {
			continue
		}
		if !strings.Contains(content, f.OriginalHTML) {
			log.Printf("writer: no match for reported issue %q, skipping", f.Issue)
			continue
		}
		content = strings.Replace(content, f.OriginalHTML, f.FixedHTML, 1)
	}
	return content
}

var fixSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"issue":        {Type: genai.TypeString},
			"originalHtml": {Type: genai.TypeString},
			"fixedHtml":    {Type: genai.TypeString},
			"explanation":  {Type: genai.TypeString},
		},
		Required: []string{"issue", "originalHtml", "fixedHtml", "explanation"},
	},
}

func editPrompt(content string) string {
	return fmt.Sprintf(`You are an expert HTML formatter and web developer. Analyze the following blog post HTML content and identify any formatting issues that need to be fixed.

Here's the blog post to analyze:
%s

INSTRUCTIONS:
1. Carefully examine the HTML for formatting problems such as:
   - Unclosed tags
   - Improperly nested elements
   - Missing paragraph tags
   - Inconsistent heading hierarchy
   - Improper list formatting
   - Broken or malformed links
   - Improper spacing or line breaks
   - Any other HTML syntax errors

2. For each issue you find, provide:
   - A description of the issue
   - The exact problematic HTML snippet (keep it short and precise)
   - The corrected HTML snippet
   - A brief explanation of the fix

3. Only identify real HTML formatting issues - do not change the content or style choices unless they represent actual HTML syntax problems.

4. If you find no issues, return an empty array.`, content)
}
