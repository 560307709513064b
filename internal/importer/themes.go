// Package importer reads and writes theme taxonomy files so a taxonomy
// can be shared between machines or seeded from a template.
package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/focusd/pkg/types"
)

// themesFile is the on-disk document shape.
type themesFile struct {
	Themes []types.Theme `yaml:"themes"`
}

// ParseThemes decodes a YAML taxonomy document and validates every
// entry. Duplicate paths are rejected.
func ParseThemes(data []byte) ([]types.Theme, error) {
	var doc themesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("importer: invalid themes file: %w", err)
	}
	if len(doc.Themes) == 0 {
		return nil, fmt.Errorf("importer: themes file contains no themes")
	}

	seen := make(map[string]bool, len(doc.Themes))
	for i, t := range doc.Themes {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("importer: theme %d: %w", i+1, err)
		}
		path := t.Path()
		if seen[path] {
			return nil, fmt.Errorf("importer: duplicate theme %q", path)
		}
		seen[path] = true
	}
	return doc.Themes, nil
}

// LoadThemesFile reads and parses a taxonomy file from disk.
func LoadThemesFile(path string) ([]types.Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer: reading %s: %w", path, err)
	}
	return ParseThemes(data)
}

// ExportThemes encodes themes as a YAML taxonomy document.
func ExportThemes(themes []types.Theme) ([]byte, error) {
	out := themesFile{Themes: make([]types.Theme, len(themes))}
	copy(out.Themes, themes)
	// IDs are store-local; strip them so the file imports cleanly elsewhere.
	for i := range out.Themes {
		out.Themes[i].ID = 0
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("importer: encoding themes: %w", err)
	}
	return data, nil
}
