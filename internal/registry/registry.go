// Package registry holds the persisted skill collection and the stores that
// keep it between sessions.
//
// A registry is one JSON document, {"skills": [...]}, written in full on
// every change. Skills are addressed by name; the name is unique within a
// registry and the first imported copy of a name wins.
package registry

import (
	"errors"
	"strings"
)

// DefaultCategory is the label used when a skill has no category.
const DefaultCategory = "General"

// ErrSkillNotFound is returned when a mutation names a skill that is not in
// the registry.
var ErrSkillNotFound = errors.New("skill not found")

// Skill is a named, categorized block of reusable text.
type Skill struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// CategoryLabel returns the skill's category, or DefaultCategory if empty.
func (s Skill) CategoryLabel() string {
	if strings.TrimSpace(s.Category) == "" {
		return DefaultCategory
	}
	return s.Category
}

// Registry is the full collection of skills in insertion order.
type Registry struct {
	Skills []Skill `json:"skills"`
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{Skills: []Skill{}}
}

// NormalizeCategory trims a user-entered label and falls back to
// DefaultCategory when nothing is left.
func NormalizeCategory(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultCategory
	}
	return label
}

// Len returns the number of skills.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Skills)
}

// Index returns the position of the named skill, or -1.
func (r *Registry) Index(name string) int {
	if r == nil {
		return -1
	}
	for i, s := range r.Skills {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether a skill with the exact name exists.
func (r *Registry) Has(name string) bool {
	return r.Index(name) >= 0
}

// Lookup returns the named skill.
func (r *Registry) Lookup(name string) (Skill, bool) {
	i := r.Index(name)
	if i < 0 {
		return Skill{}, false
	}
	return r.Skills[i], true
}

// Names returns skill names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	if r == nil {
		return names
	}
	for _, s := range r.Skills {
		names = append(names, s.Name)
	}
	return names
}

// Clone returns a deep copy. Skills are plain values so copying the slice
// is enough.
func (r *Registry) Clone() *Registry {
	c := New()
	if r == nil {
		return c
	}
	c.Skills = append(c.Skills, r.Skills...)
	return c
}

// Remove deletes the named skill in place.
func (r *Registry) Remove(name string) error {
	i := r.Index(name)
	if i < 0 {
		return ErrSkillNotFound
	}
	r.Skills = append(r.Skills[:i], r.Skills[i+1:]...)
	return nil
}

// SetCategory writes a normalized label to the named skill and returns the
// label that was stored.
func (r *Registry) SetCategory(name, label string) (string, error) {
	i := r.Index(name)
	if i < 0 {
		return "", ErrSkillNotFound
	}
	label = NormalizeCategory(label)
	r.Skills[i].Category = label
	return label, nil
}

// Clear drops every skill.
func (r *Registry) Clear() {
	r.Skills = []Skill{}
}

// normalize makes a decoded registry safe to use: a null or missing skill
// list becomes empty.
func (r *Registry) normalize() *Registry {
	if r == nil {
		return New()
	}
	if r.Skills == nil {
		r.Skills = []Skill{}
	}
	return r
}
