// Package forcegraph builds the country/energy-type force graph drawn inside
// the chord diagram.
package forcegraph

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// TemplateNode is one country node of the static graph descriptor.
type TemplateNode struct {
	ID string `json:"id"`
}

// TemplateLink is a static link of the descriptor. Most descriptors carry
// none; energy links are derived from the data on every build.
type TemplateLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// Template is the immutable graph descriptor. Builds never modify it.
type Template struct {
	Nodes []TemplateNode `json:"nodes"`
	Links []TemplateLink `json:"links"`
}

// LoadTemplate reads the graph descriptor JSON at path.
func LoadTemplate(path string) (*Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph template: %w", err)
	}
	return ParseTemplate(b)
}

// ParseTemplate decodes a descriptor. Duplicate node ids are rejected.
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding graph template: %w", err)
	}
	seen := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("graph template: node without id")
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("graph template: duplicate node %q", n.ID)
		}
		seen[n.ID] = true
	}
	return &t, nil
}
