package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/scrypster/focusd/pkg/types"
)

// ParsedClassification is the normalized model answer before the theme
// string is resolved against the taxonomy.
type ParsedClassification struct {
	ThemePath  string
	Confidence float64
	Analysis   string
}

// ParserStrategy attempts to extract a classification from raw model
// text. Strategies are pure: same text in, same result out. The second
// return value reports whether the strategy applied; strategies never
// return partial garbage on false.
type ParserStrategy func(text string) (*ParsedClassification, bool)

// Strategies returns the fallback ladder in evaluation order: strict
// JSON first, then loose text patterns. The unconditional default-theme
// tier lives in ParseClassification itself since it needs the taxonomy.
func Strategies() []ParserStrategy {
	return []ParserStrategy{ParseStrictJSON, ParsePatternText}
}

// ParseClassification runs the fallback ladder over the model text and
// resolves the extracted theme string against the taxonomy. It never
// fails: if no strategy applies, the first theme is selected with
// confidence 50 and the raw text kept as analysis. themes must be
// non-empty; the classifier enforces that at construction.
func ParseClassification(text string, themes []types.Theme) (types.Theme, float64, string) {
	for _, strategy := range Strategies() {
		if parsed, ok := strategy(text); ok {
			theme := ResolveTheme(parsed.ThemePath, themes)
			return theme, ClampConfidence(parsed.Confidence), parsed.Analysis
		}
	}

	// Terminal default: nothing extractable at all.
	return themes[0], 50, strings.TrimSpace(text)
}

// extractJSON extracts the first complete JSON object from text that may
// contain prose or markdown fences around it. Returns "" when no complete
// object is present.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		// Only count braces outside of strings.
		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return ""
}

// rawClassification mirrors the JSON shape the prompt requests. The
// confidence field is left loosely typed because models return numbers,
// quoted numbers, and occasionally words.
type rawClassification struct {
	Theme      string      `json:"theme"`
	Confidence interface{} `json:"confidence"`
	Analysis   string      `json:"analysis"`
}

// ParseStrictJSON is tier one of the ladder: locate the first {...} span
// and decode it. Applies only when the span decodes and names a theme.
func ParseStrictJSON(text string) (*ParsedClassification, bool) {
	span := extractJSON(text)
	if span == "" {
		return nil, false
	}

	var raw rawClassification
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, false
	}
	if strings.TrimSpace(raw.Theme) == "" {
		return nil, false
	}

	analysis := strings.TrimSpace(raw.Analysis)
	if analysis == "" {
		analysis = strings.TrimSpace(text)
	}

	return &ParsedClassification{
		ThemePath:  raw.Theme,
		Confidence: coerceConfidence(raw.Confidence),
		Analysis:   analysis,
	}, true
}

var (
	// themePathRe matches an "X > Y > Z" triple on a single line.
	themePathRe = regexp.MustCompile(`([^>\n]+?)\s*>\s*([^>\n]+?)\s*>\s*([^>\n]+)`)

	// confidenceRe matches an explicitly labeled confidence value.
	confidenceRe = regexp.MustCompile(`(?i)confidence\s*[:：]\s*(-?\d+)`)

	// labeledIntRe matches any "label, colon, integer" pattern as a
	// language-independent fallback for the confidence value.
	labeledIntRe = regexp.MustCompile(`[:：]\s*(\d{1,3})\b`)
)

// ParsePatternText is tier two of the ladder: scrape a theme triple and a
// labeled integer out of free-form text. The two scrapes are independent:
// a labeled confidence without a triple still applies, leaving the theme
// path empty so resolution falls through to the first theme. Applies only
// when at least one of the two patterns is present.
func ParsePatternText(text string) (*ParsedClassification, bool) {
	var themePath string
	if m := themePathRe.FindStringSubmatch(text); m != nil {
		themePath = strings.TrimSpace(m[1]) + " > " + strings.TrimSpace(m[2]) + " > " + strings.TrimSpace(m[3])
	}

	confidence, haveConfidence := scrapeConfidence(text)
	if themePath == "" && !haveConfidence {
		return nil, false
	}

	return &ParsedClassification{
		ThemePath:  themePath,
		Confidence: confidence,
		Analysis:   strings.TrimSpace(text),
	}, true
}

// scrapeConfidence extracts a labeled confidence value from free-form
// text, defaulting to 50 when no label is present.
func scrapeConfidence(text string) (float64, bool) {
	if cm := confidenceRe.FindStringSubmatch(text); cm != nil {
		if v, err := strconv.ParseFloat(cm[1], 64); err == nil {
			return v, true
		}
	}
	if cm := labeledIntRe.FindStringSubmatch(text); cm != nil {
		if v, err := strconv.ParseFloat(cm[1], 64); err == nil {
			return v, true
		}
	}
	return 50, false
}

// ResolveTheme maps a "Category > Subcategory > Specific" string onto an
// actual taxonomy node with graduated matching: exact triple, then
// category+subcategory, then category only, then the first theme as the
// deterministic tie-break for no match. themes must be non-empty.
func ResolveTheme(themePath string, themes []types.Theme) types.Theme {
	parts := strings.Split(themePath, ">")
	var category, subcategory, specific string
	if len(parts) > 0 {
		category = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		subcategory = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		specific = strings.TrimSpace(parts[2])
	}

	for _, t := range themes {
		if t.Category == category && t.Subcategory == subcategory && t.Specific == specific {
			return t
		}
	}
	for _, t := range themes {
		if t.Category == category && t.Subcategory == subcategory {
			return t
		}
	}
	for _, t := range themes {
		if t.Category == category {
			return t
		}
	}
	return themes[0]
}

// ClampConfidence coerces any confidence value into [0, 100].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// coerceConfidence turns whatever JSON value the model produced into a
// float64, defaulting to 50 for anything non-numeric.
func coerceConfidence(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed
		}
		return 50
	case nil:
		return 50
	default:
		return 50
	}
}
