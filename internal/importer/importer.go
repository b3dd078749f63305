// Package importer turns a selected folder tree into registry skills.
//
// A folder holds a skill when it contains a marker file named exactly
// SKILL.md. The folder's name becomes the skill name; when the marker sits
// at least two folders below the selection root, the top-level folder
// becomes the skill's category.
package importer

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/skillsync/skillsync/internal/registry"
)

// MarkerFile is the file name that identifies a skill folder. Matching is
// case-sensitive.
const MarkerFile = "SKILL.md"

// unknownName is used for a marker file that has no parent folder in its path.
const unknownName = "Unknown"

// ErrNoSkillFiles is returned when a selection contains no marker files.
var ErrNoSkillFiles = errors.New("no SKILL.md files found in this folder")

// File is one entry of a selected folder tree.
type File struct {
	// Path is slash-separated and relative to the selection, starting with
	// the selected folder's own name, e.g. "skills/Bio/Primer/SKILL.md".
	Path string
	// Read returns the file's full contents.
	Read func() ([]byte, error)
}

// Result reports what an import did.
type Result struct {
	Added   int      `json:"added"`
	Skipped []string `json:"skipped,omitempty"` // names that already existed
}

// Import derives one skill per marker file and appends the ones whose names
// are not yet taken. reg is not modified; the returned registry is a new
// value that the caller persists.
func Import(reg *registry.Registry, files []File) (*registry.Registry, Result, error) {
	var markers []File
	for _, f := range files {
		if path.Base(f.Path) == MarkerFile {
			markers = append(markers, f)
		}
	}
	if len(markers) == 0 {
		return reg.Clone(), Result{}, ErrNoSkillFiles
	}

	out := reg.Clone()
	var res Result
	for _, f := range markers {
		name, category := Derive(f.Path)
		if out.Has(name) {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		data, err := f.Read()
		if err != nil {
			return reg.Clone(), Result{}, fmt.Errorf("reading %s: %w", f.Path, err)
		}
		out.Skills = append(out.Skills, registry.Skill{
			Name:     name,
			Content:  string(data),
			Category: category,
		})
		res.Added++
	}
	return out, res, nil
}

// Derive returns the skill name and category for a marker file path.
func Derive(p string) (name, category string) {
	parts := strings.Split(strings.Trim(p, "/"), "/")

	name = unknownName
	if len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	category = registry.DefaultCategory
	if len(parts) > 2 {
		category = parts[0]
	}
	return name, category
}
