// Package catalog derives the category view of a registry. Nothing here is
// persisted; groups are rebuilt for every render.
package catalog

import (
	"sort"
	"strings"

	"github.com/skillsync/skillsync/internal/registry"
)

// Entry is one skill inside a group. Actions on it go by Skill.Name, never
// by position.
type Entry struct {
	Skill registry.Skill
}

// Group is one category and its skills in registry order.
type Group struct {
	Label   string
	Entries []Entry
}

// GroupSkills buckets the registry's skills by category. Groups are sorted
// by label; skills inside a group keep registry order. An empty category is
// filed under registry.DefaultCategory.
func GroupSkills(reg *registry.Registry) []Group {
	byLabel := make(map[string]*Group)
	if reg != nil {
		for _, s := range reg.Skills {
			label := s.CategoryLabel()
			g, ok := byLabel[label]
			if !ok {
				g = &Group{Label: label}
				byLabel[label] = g
			}
			g.Entries = append(g.Entries, Entry{Skill: s})
		}
	}

	groups := make([]Group, 0, len(byLabel))
	for _, label := range sortedKeys(byLabel) {
		groups = append(groups, *byLabel[label])
	}
	return groups
}

// Categories returns the sorted distinct category labels.
func Categories(reg *registry.Registry) []string {
	seen := make(map[string]struct{})
	if reg != nil {
		for _, s := range reg.Skills {
			seen[s.CategoryLabel()] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Suggest returns the categories that start with prefix, ignoring case.
// An empty prefix returns every category.
func Suggest(reg *registry.Registry, prefix string) []string {
	all := Categories(reg)
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return all
	}
	var out []string
	for _, c := range all {
		if strings.HasPrefix(strings.ToLower(c), p) {
			out = append(out, c)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
