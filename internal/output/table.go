package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skillsync/skillsync/internal/catalog"
	"github.com/skillsync/skillsync/internal/importer"
	"github.com/skillsync/skillsync/internal/registry"
)

// EmptyHint is shown in place of an empty skill list.
const EmptyHint = "No skills yet. Import a skills folder with: skillsync import DIR"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	categoryStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
}

// Records converts skills to their listed form.
func Records(skills []registry.Skill) []SkillRecord {
	out := make([]SkillRecord, 0, len(skills))
	for _, s := range skills {
		out = append(out, SkillRecord{
			Name:        s.Name,
			Category:    s.CategoryLabel(),
			Description: importer.Describe(s.Content).Description,
			Bytes:       len(s.Content),
		})
	}
	return out
}

// SkillTable renders skills in registry order.
func SkillTable(w io.Writer, skills []registry.Skill) {
	if len(skills) == 0 {
		fmt.Fprintln(w, dimStyle.Render(EmptyHint))
		return
	}
	recs := Records(skills)

	const pad = 2
	nameW, catW, sizeW := 6, 10, 6
	for _, r := range recs {
		nameW = max(nameW, min(len(r.Name)+pad, 40)) //nolint:mnd // max name column width
		catW = max(catW, min(len(r.Category)+pad, 24)) //nolint:mnd // max category column width
		sizeW = max(sizeW, len(strconv.Itoa(r.Bytes))+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %s", nameW, "NAME", catW, "CATEGORY", sizeW, "BYTES", "DESCRIPTION")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, r := range recs {
		desc := r.Description
		if desc == "" {
			desc = dimStyle.Render("--")
		}
		fmt.Fprintf(w, "%-*s %-*s %-*d %s\n",
			nameW, truncate(r.Name, nameW-pad), catW, truncate(r.Category, catW-pad), sizeW, r.Bytes, truncate(desc, 60))
	}
}

// GroupedList renders skills under their category headings.
func GroupedList(w io.Writer, groups []catalog.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, dimStyle.Render(EmptyHint))
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, categoryStyle.Render(g.Label))
		for _, e := range g.Entries {
			fmt.Fprintln(w, "  "+e.Skill.Name)
		}
	}
}

// CategoryList renders one category label per line.
func CategoryList(w io.Writer, labels []string) {
	for _, l := range labels {
		fmt.Fprintln(w, l)
	}
}

func truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
