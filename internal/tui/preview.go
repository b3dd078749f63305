package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// maxPreviewLines bounds the rendered skill preview.
const maxPreviewLines = 12

// markdownRenderer renders markdown text to styled ANSI output.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// newMarkdownRenderer creates a renderer with the given terminal width.
func newMarkdownRenderer(width int) *markdownRenderer {
	if width < 40 {
		width = 80
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-6), // room for the preview border
	)
	return &markdownRenderer{renderer: r, width: width}
}

// render converts markdown text to styled ANSI output.
func (r *markdownRenderer) render(md string) string {
	if r.renderer == nil {
		return md
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// updateWidth recreates the renderer with a new terminal width.
func (r *markdownRenderer) updateWidth(width int) {
	if width < 40 {
		width = 80
	}
	if width == r.width {
		return
	}
	r.width = width
	newR, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-6),
	)
	if err == nil {
		r.renderer = newR
	}
}

// renderPreview renders a skill's content, cut to maxPreviewLines.
func (r *markdownRenderer) renderPreview(content string) string {
	lines := strings.Split(r.render(stripFrontmatter(content)), "\n")
	if len(lines) > maxPreviewLines {
		lines = append(lines[:maxPreviewLines], hintStyle.Render("…"))
	}
	return previewBorderStyle.Render(strings.Join(lines, "\n"))
}

// stripFrontmatter drops a leading "---" delimited block.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return content
	}
	return strings.TrimLeft(parts[2], "\n")
}
