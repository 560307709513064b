package llm

import (
	"testing"

	"github.com/scrypster/focusd/pkg/types"
)

func testThemes() []types.Theme {
	return []types.Theme{
		{ID: 1, Category: "Work", Subcategory: "Development", Specific: "Backend"},
		{ID: 2, Category: "Work", Subcategory: "Development", Specific: "Frontend"},
		{ID: 3, Category: "Work", Subcategory: "Meetings", Specific: "Team meeting"},
		{ID: 4, Category: "Entertainment", Subcategory: "Video", Specific: "YouTube"},
	}
}

func TestParseClassificationStrictJSON(t *testing.T) {
	text := `{"theme": "Work > Development > Backend", "confidence": 85, "analysis": "Editing Go code in an IDE"}`

	theme, confidence, analysis := ParseClassification(text, testThemes())

	if theme.ID != 1 {
		t.Errorf("resolved theme ID = %d, want 1", theme.ID)
	}
	if confidence != 85 {
		t.Errorf("confidence = %v, want 85", confidence)
	}
	if analysis != "Editing Go code in an IDE" {
		t.Errorf("analysis = %q", analysis)
	}
}

func TestParseClassificationJSONWithFencesAndProse(t *testing.T) {
	text := "Here is my answer:\n```json\n{\"theme\": \"Entertainment > Video > YouTube\", \"confidence\": 70, \"analysis\": \"A video player is visible\"}\n```\nHope that helps."

	theme, confidence, _ := ParseClassification(text, testThemes())

	if theme.ID != 4 {
		t.Errorf("resolved theme ID = %d, want 4", theme.ID)
	}
	if confidence != 70 {
		t.Errorf("confidence = %v, want 70", confidence)
	}
}

func TestParseClassificationQuotedConfidence(t *testing.T) {
	text := `{"theme": "Work > Meetings > Team meeting", "confidence": "60", "analysis": "Video call grid"}`

	_, confidence, _ := ParseClassification(text, testThemes())
	if confidence != 60 {
		t.Errorf("confidence = %v, want 60", confidence)
	}
}

func TestParseClassificationNonNumericConfidenceDefaults(t *testing.T) {
	text := `{"theme": "Work > Development > Backend", "confidence": "high", "analysis": "Terminal"}`

	_, confidence, _ := ParseClassification(text, testThemes())
	if confidence != 50 {
		t.Errorf("confidence = %v, want default 50", confidence)
	}
}

func TestParseClassificationConfidenceClamped(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{`{"theme": "Work > Development > Backend", "confidence": 150, "analysis": "x"}`, 100},
		{`{"theme": "Work > Development > Backend", "confidence": -20, "analysis": "x"}`, 0},
	}
	for _, tt := range tests {
		if _, got, _ := ParseClassification(tt.text, testThemes()); got != tt.want {
			t.Errorf("confidence for %q = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseClassificationTextPattern(t *testing.T) {
	text := "The screen shows Work > Development > Frontend activity.\nConfidence: 75\nThe user is editing CSS."

	theme, confidence, _ := ParseClassification(text, testThemes())

	if theme.ID != 2 {
		t.Errorf("resolved theme ID = %d, want 2", theme.ID)
	}
	if confidence != 75 {
		t.Errorf("confidence = %v, want 75", confidence)
	}
}

func TestParseClassificationTextPatternDefaultConfidence(t *testing.T) {
	text := "Looks like Work > Development > Backend to me."

	_, confidence, _ := ParseClassification(text, testThemes())
	if confidence != 50 {
		t.Errorf("confidence = %v, want default 50", confidence)
	}
}

func TestParseClassificationConfidenceWithoutThemeTriple(t *testing.T) {
	text := "I could not identify a clear activity. confidence: 80"

	theme, confidence, _ := ParseClassification(text, testThemes())

	if theme.ID != 1 {
		t.Errorf("theme ID = %d, want first theme", theme.ID)
	}
	if confidence != 80 {
		t.Errorf("confidence = %v, want 80", confidence)
	}
}

func TestParseClassificationLabeledIntWithoutThemeTriple(t *testing.T) {
	text := "确信度：65\nThe screen content is ambiguous."

	theme, confidence, _ := ParseClassification(text, testThemes())

	if theme.ID != 1 {
		t.Errorf("theme ID = %d, want first theme", theme.ID)
	}
	if confidence != 65 {
		t.Errorf("confidence = %v, want 65", confidence)
	}
}

func TestParseClassificationGarbageFallsBackToFirstTheme(t *testing.T) {
	text := "I cannot determine what is on this screen."

	theme, confidence, analysis := ParseClassification(text, testThemes())

	if theme.ID != 1 {
		t.Errorf("fallback theme ID = %d, want first theme", theme.ID)
	}
	if confidence != 50 {
		t.Errorf("fallback confidence = %v, want 50", confidence)
	}
	if analysis == "" {
		t.Error("fallback should keep raw text as analysis")
	}
}

func TestResolveThemeGraduatedMatching(t *testing.T) {
	themes := testThemes()

	tests := []struct {
		name   string
		path   string
		wantID int64
	}{
		{"exact match", "Work > Development > Backend", 1},
		{"exact with extra spaces", "  Work  >  Development  >  Backend  ", 1},
		{"specific miss falls to cat+subcat", "Work > Development > Databases", 1},
		{"subcat miss falls to category", "Work > Design > Mockups", 1},
		{"no match falls to first theme", "Hobbies > Music > Guitar", 1},
		{"category-only different branch", "Entertainment > Music > Jazz", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTheme(tt.path, themes); got.ID != tt.wantID {
				t.Errorf("ResolveTheme(%q).ID = %d, want %d", tt.path, got.ID, tt.wantID)
			}
		})
	}
}

func TestExtractJSONBraceMatching(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"nested object", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "close } brace"}`, `{"a": "close } brace"}`},
		{"escaped quote", `{"a": "say \"hi\""}`, `{"a": "say \"hi\""}`},
		{"no object", "just text", ""},
		{"unterminated", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
