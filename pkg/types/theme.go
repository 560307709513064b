// Package types defines the shared domain types for the focusd activity
// tracker: themes (the classification taxonomy), capture samples,
// classification events, and derived timeline segments.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Theme is one node of the three-level classification taxonomy.
// Identity is ID; the (Category, Subcategory, Specific) triple is expected
// to be unique but not enforced here. Classification events store a copy
// of the matched theme, so editing the taxonomy never rewrites history.
type Theme struct {
	ID          int64  `json:"id" yaml:"id,omitempty"`
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory" yaml:"subcategory"`
	Specific    string `json:"specific" yaml:"specific"`
}

// Path returns the theme formatted as "Category > Subcategory > Specific",
// the representation used in prompts and in model responses.
func (t Theme) Path() string {
	return fmt.Sprintf("%s > %s > %s", t.Category, t.Subcategory, t.Specific)
}

// Validate checks that all three levels are non-empty.
func (t Theme) Validate() error {
	if strings.TrimSpace(t.Category) == "" {
		return errors.New("theme category is required")
	}
	if strings.TrimSpace(t.Subcategory) == "" {
		return errors.New("theme subcategory is required")
	}
	if strings.TrimSpace(t.Specific) == "" {
		return errors.New("theme specific is required")
	}
	return nil
}

// DefaultThemes returns the taxonomy seeded on first run when the theme
// store is empty.
func DefaultThemes() []Theme {
	return []Theme{
		{ID: 1, Category: "Study", Subcategory: "Reading", Specific: "Technical docs"},
		{ID: 2, Category: "Study", Subcategory: "Reading", Specific: "Books"},
		{ID: 3, Category: "Study", Subcategory: "Programming", Specific: "Tutorials"},
		{ID: 4, Category: "Work", Subcategory: "Meetings", Specific: "Team meeting"},
		{ID: 5, Category: "Work", Subcategory: "Meetings", Specific: "Client call"},
		{ID: 6, Category: "Work", Subcategory: "Development", Specific: "Frontend"},
		{ID: 7, Category: "Work", Subcategory: "Development", Specific: "Backend"},
		{ID: 8, Category: "Entertainment", Subcategory: "Games", Specific: "Minecraft"},
		{ID: 9, Category: "Entertainment", Subcategory: "Games", Specific: "Other games"},
		{ID: 10, Category: "Entertainment", Subcategory: "Video", Specific: "YouTube"},
		{ID: 11, Category: "Entertainment", Subcategory: "Video", Specific: "Streaming"},
		{ID: 12, Category: "Life", Subcategory: "Shopping", Specific: "Online shopping"},
		{ID: 13, Category: "Life", Subcategory: "Social", Specific: "Messaging"},
	}
}
