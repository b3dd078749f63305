package importer

import (
	"strings"

	"go.yaml.in/yaml/v3"
)

// Meta is display metadata read from a skill's optional YAML frontmatter.
// It never changes the skill's name or stored content.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Describe parses frontmatter delimited by "---" lines at the top of
// content. Content without frontmatter, or with frontmatter that does not
// parse, yields an empty Meta.
func Describe(content string) Meta {
	var m Meta
	if !strings.HasPrefix(content, "---") {
		return m
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return m
	}
	if err := yaml.Unmarshal([]byte(parts[1]), &m); err != nil {
		return Meta{}
	}
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	return m
}
