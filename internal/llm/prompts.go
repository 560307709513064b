package llm

import (
	"strings"

	"github.com/scrypster/focusd/pkg/types"
)

// BuildClassifyPrompt renders the classification prompt for a screenshot.
// Every theme is enumerated as "Category > Subcategory > Specific" and the
// model is told to answer with a single JSON object naming one of them.
func BuildClassifyPrompt(themes []types.Theme) string {
	var sb strings.Builder

	sb.WriteString("Analyze this screenshot and classify the activity the user is engaged in.\n\n")
	sb.WriteString("Available themes:\n")
	for _, theme := range themes {
		sb.WriteString(theme.Path())
		sb.WriteByte('\n')
	}

	sb.WriteString(`
Respond with a single JSON object and nothing else:
{
  "theme": "<one theme from the list above, exactly as written>",
  "confidence": <integer 0-100>,
  "analysis": "<one or two sentences describing what is on screen and why it matches>"
}

Rules:
- theme must be copied verbatim from the list, including the " > " separators
- lower the confidence if the screenshot is blurry or ambiguous
- prefer the most specific matching theme`)

	return sb.String()
}
