package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/catalog"
	"github.com/skillsync/skillsync/internal/importer"
	"github.com/skillsync/skillsync/internal/registry"
	"github.com/skillsync/skillsync/internal/surface"
)

// UI mode determines what the live region shows.
type uiMode int

const (
	modeClosed   uiMode = iota // modal variant: only the trigger line
	modeList                   // browsing skills
	modeConfirm                // waiting for y/n
	modeCategory               // editing a category label
	modeImport                 // typing a folder path
	modeFilter                 // typing a name filter
)

// confirmation is a destructive action waiting for y/n.
type confirmation struct {
	op     string // opDelete or opClear
	name   string
	prompt string
}

// model is the Bubble Tea model for the TUI.
type model struct {
	surface   *surface.Surface
	ctx       context.Context
	exportDir string
	usedFmt   string // notice after a successful Use, %s is the skill name

	// UI state.
	mode          uiMode
	width, height int
	keys          keyMap
	help          help.Model
	input         textinput.Model
	spinner       spinner.Model
	mdRenderer    *markdownRenderer

	// List state, rebuilt by refresh.
	view    surface.View
	items   []registry.Skill // visible skills in display order
	headers map[int]string   // category header shown above items[i]
	cursor  int
	filter  string

	confirm     *confirmation
	editing     string // skill whose category is being edited
	notice      string
	noticeIsErr bool
	preview     bool
	busy        string // in-flight action label; keys are ignored while set

	quitting bool
}

func newModel(ctx context.Context, s *surface.Surface, exportDir, usedFmt string, width int) model {
	mode := modeList
	if s.Variant() == surface.Modal {
		mode = modeClosed
	}
	if usedFmt == "" {
		usedFmt = "Sent %s."
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = promptStyle

	m := model{
		surface:    s,
		ctx:        ctx,
		exportDir:  exportDir,
		usedFmt:    usedFmt,
		mode:       mode,
		width:      width,
		keys:       defaultKeyMap(),
		help:       help.New(),
		input:      newTextInput(width),
		spinner:    sp,
		mdRenderer: newMarkdownRenderer(width),
	}
	m.refresh()
	return m
}

func (m model) modal() bool {
	return m.surface.Variant() == surface.Modal
}

// refresh rebuilds the visible rows from the surface.
func (m *model) refresh() {
	m.view = m.surface.View()
	m.headers = map[int]string{}
	m.items = nil

	switch {
	case m.filter != "":
		m.items = filterSkills(m.filter, m.view.Skills)
	case m.modal():
		for _, g := range m.view.Groups {
			m.headers[len(m.items)] = g.Label
			for _, e := range g.Entries {
				m.items = append(m.items, e.Skill)
			}
		}
	default:
		m.items = append(m.items, m.view.Skills...)
	}

	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the skill under the cursor.
func (m model) selected() (registry.Skill, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return registry.Skill{}, false
	}
	return m.items[m.cursor], true
}

// selectName moves the cursor to the named skill if it is visible.
func (m *model) selectName(name string) {
	for i, s := range m.items {
		if s.Name == name {
			m.cursor = i
			return
		}
	}
}

func (m *model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeIsErr = isErr
}

// ── Commands ──
// Each command runs one surface action off the UI loop. Only one runs at a
// time (see busy), so actions apply in the order the user issued them.

func (m model) loadCmd() tea.Cmd {
	s, ctx := m.surface, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: s.Load(ctx)}
	}
}

func (m model) startAction(label string, cmd tea.Cmd) (model, tea.Cmd) {
	m.busy = label
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m model) useCmd(name string) tea.Cmd {
	s, ctx, notice := m.surface, m.ctx, fmt.Sprintf(m.usedFmt, name)
	return func() tea.Msg {
		err := s.Use(ctx, name)
		return actionDoneMsg{op: opUse, notice: notice, err: err}
	}
}

func (m model) deleteCmd(name string) tea.Cmd {
	s, ctx := m.surface, m.ctx
	return func() tea.Msg {
		err := s.Delete(ctx, name)
		return actionDoneMsg{op: opDelete, notice: fmt.Sprintf("Deleted %s.", name), err: err}
	}
}

func (m model) clearCmd() tea.Cmd {
	s, ctx := m.surface, m.ctx
	return func() tea.Msg {
		err := s.Clear(ctx)
		return actionDoneMsg{op: opClear, notice: "Cleared all skills.", err: err}
	}
}

func (m model) categoryCmd(name, label string) tea.Cmd {
	s, ctx := m.surface, m.ctx
	return func() tea.Msg {
		err := s.SetCategory(ctx, name, label)
		return actionDoneMsg{op: opCategory, notice: fmt.Sprintf("Moved %s to %s.", name, registry.NormalizeCategory(label)), err: err}
	}
}

func (m model) importCmd(path string) tea.Cmd {
	s, ctx := m.surface, m.ctx
	return func() tea.Msg {
		files, err := importer.ScanDir(expandHome(path))
		if err != nil {
			return actionDoneMsg{op: opImport, err: err}
		}
		res, err := s.Import(ctx, files)
		if err != nil {
			return actionDoneMsg{op: opImport, err: err}
		}
		return actionDoneMsg{op: opImport, notice: fmt.Sprintf("Imported %d new skills!", res.Added)}
	}
}

func (m model) exportCmd() tea.Cmd {
	s := m.surface
	path := filepath.Join(m.exportDir, s.Variant().ExportFilename())
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return actionDoneMsg{op: opExport, err: err}
		}
		err = s.Export(f, s.Variant().PrettyExport())
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return actionDoneMsg{op: opExport, notice: "Exported to " + path, err: err}
	}
}

// categorySuggestions returns the known labels starting with prefix.
func (m model) categorySuggestions(prefix string) []string {
	return catalog.Suggest(m.surface.Registry(), prefix)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// errorNotice turns an action error into the line shown to the user.
func errorNotice(op string, err error) string {
	switch {
	case errors.Is(err, importer.ErrNoSkillFiles):
		return "No SKILL.md files found in this folder!"
	case errors.Is(err, activation.ErrInputNotFound):
		return "Could not find the chat input box! Please make sure you are in a chat."
	case errors.Is(err, registry.ErrSkillNotFound):
		return err.Error()
	default:
		return fmt.Sprintf("%s failed: %v", op, err)
	}
}
