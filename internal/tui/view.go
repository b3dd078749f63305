package tui

import (
	"fmt"
	"strings"
)

// emptyHint is shown when the registry has no skills.
const emptyHint = "No skills loaded. Press i to import your skill folders."

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeClosed {
		return m.renderClosed()
	}

	var b strings.Builder
	title := "Skill Registry"
	if m.modal() {
		title = "Skill Manager"
	}
	b.WriteString(titleStyle.Render(title))
	if n := len(m.view.Skills); n > 0 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("  %d skills", n)))
	}
	b.WriteString("\n")
	if m.filter != "" && m.mode != modeFilter {
		b.WriteString(hintStyle.Render("filter: "+m.filter+"  (esc to clear)") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderList())

	if m.preview {
		if s, ok := m.selected(); ok {
			b.WriteString("\n" + m.mdRenderer.renderPreview(s.Content) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m model) renderClosed() string {
	var b strings.Builder
	b.WriteString(triggerStyle.Render("📂 Skills"))
	b.WriteString(hintStyle.Render("  s to open · q to quit"))
	if m.notice != "" {
		b.WriteString("\n" + m.renderNotice())
	}
	return b.String()
}

// renderList draws the visible rows inside a scroll window that follows the
// cursor.
func (m model) renderList() string {
	if len(m.view.Skills) == 0 {
		return emptyStyle.Render(emptyHint) + "\n"
	}
	if len(m.items) == 0 {
		return emptyStyle.Render("No skills match "+fmt.Sprintf("%q", m.filter)) + "\n"
	}

	maxVisible := m.visibleRows()
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := min(start+maxVisible, len(m.items))

	var b strings.Builder
	for i := start; i < end; i++ {
		if label, ok := m.headers[i]; ok {
			if i > start {
				b.WriteString("\n")
			}
			b.WriteString(categoryHeaderStyle.Render(label) + "\n")
		} else if i == start && m.modal() && m.filter == "" {
			// Scrolled past the header; repeat it so the group stays labelled.
			b.WriteString(categoryHeaderStyle.Render(m.items[i].CategoryLabel()) + "\n")
		}

		s := m.items[i]
		tag := ""
		if !m.modal() || m.filter != "" {
			tag = categoryTagStyle.Render("  " + s.CategoryLabel())
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("  > "+s.Name) + tag + "\n")
		} else {
			b.WriteString(skillStyle.Render("    "+s.Name) + tag + "\n")
		}
	}
	if len(m.items) > maxVisible {
		b.WriteString(hintStyle.Render(fmt.Sprintf("  (%d–%d of %d)", start+1, end, len(m.items))) + "\n")
	}
	return b.String()
}

func (m model) visibleRows() int {
	if m.height <= 0 {
		return 10
	}
	rows := m.height - 8
	if m.preview {
		rows -= maxPreviewLines + 2
	}
	return max(rows, 3)
}

// renderStatus draws the bottom region: the active prompt, a notice, or
// the key help.
func (m model) renderStatus() string {
	var b strings.Builder
	switch {
	case m.busy != "":
		b.WriteString(m.spinner.View() + " " + hintStyle.Render(m.busy+"…"))
		return b.String()

	case m.mode == modeConfirm && m.confirm != nil:
		b.WriteString(confirmStyle.Render(m.confirm.prompt) + hintStyle.Render("  (y/n)"))
		return b.String()

	case m.inputActive():
		label := map[uiMode]string{
			modeCategory: "Category for " + m.editing,
			modeImport:   "Import folder",
			modeFilter:   "Filter",
		}[m.mode]
		b.WriteString(hintStyle.Render(label) + "\n")
		b.WriteString(m.input.View())
		if m.mode == modeCategory {
			if sugg := m.categorySuggestions(m.input.Value()); len(sugg) > 0 {
				b.WriteString("\n" + hintStyle.Render("  "+strings.Join(sugg, " · ")+"  (tab completes)"))
			}
		}
		return b.String()
	}

	if m.notice != "" {
		b.WriteString(m.renderNotice() + "\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.listHelp(m.modal())))
	return b.String()
}

func (m model) renderNotice() string {
	if m.noticeIsErr {
		return errorStyle.Render(m.notice)
	}
	return noticeStyle.Render(m.notice)
}
