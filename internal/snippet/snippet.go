// Package snippet loads user-defined completion snippets from a YAML file
// (spec.md §6's "snippet storage ... external collaborator specified only
// at the interface boundary"), in the shape metadata.Source.Snippets
// expects.
package snippet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/sqlscope/internal/metadata"
)

// file is the on-disk YAML shape: a flat list under a "snippets:" key.
type file struct {
	Snippets []entry `yaml:"snippets"`
}

type entry struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	InsertText  string `yaml:"insert_text"`
}

// Load reads a snippet file at path and converts it to metadata.Snippet
// values. A missing file is not an error: it yields an empty list, matching
// config.Load's "no file yet" behavior.
func Load(path string) ([]metadata.Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snippet: read %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("snippet: parse %s: %w", path, err)
	}

	out := make([]metadata.Snippet, 0, len(f.Snippets))
	for _, e := range f.Snippets {
		if e.Label == "" || e.InsertText == "" {
			continue
		}
		out = append(out, metadata.Snippet{
			Label:       e.Label,
			Description: e.Description,
			InsertText:  e.InsertText,
		})
	}
	return out, nil
}
