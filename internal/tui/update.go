package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		// Keep the previous values on zero sizes from pseudo-terminals.
		if msg.Width > 0 {
			m.width = msg.Width
			m.input.Width = max(msg.Width-4, 20)
			m.help.Width = msg.Width
			m.mdRenderer.updateWidth(msg.Width)
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.setNotice(errorNotice("load", msg.err), true)
		}
		m.refresh()
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other input internals.
	if m.inputActive() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) inputActive() bool {
	return m.mode == modeCategory || m.mode == modeImport || m.mode == modeFilter
}

func (m model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.setNotice(errorNotice(msg.op, msg.err), true)
	} else {
		m.setNotice(msg.notice, false)
	}
	// The modal closes after Use whether or not the insert worked.
	if msg.op == opUse && m.modal() {
		m.mode = modeClosed
		m.filter = ""
		m.preview = false
	}
	m.refresh()
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}
	// Notices last until the next key press.
	m.notice = ""
	m.noticeIsErr = false

	switch m.mode {
	case modeClosed:
		return m.handleClosedKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeCategory, modeImport, modeFilter:
		return m.handleInputKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m model) handleClosedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		m.mode = modeList
		m.cursor = 0
		// Reload on every open; another process may have changed storage.
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		if m.filter != "" {
			m.filter = ""
			m.refresh()
			return m, nil
		}
		if m.modal() {
			m.mode = modeClosed
			m.preview = false
		}
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Use):
		s, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.startAction("Activating "+s.Name, m.useCmd(s.Name))

	case key.Matches(msg, m.keys.Delete):
		s, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirm = &confirmation{
			op:     opDelete,
			name:   s.Name,
			prompt: `Are you sure you want to delete "` + s.Name + `"?`,
		}
		m.mode = modeConfirm
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if len(m.view.Skills) == 0 {
			return m, nil
		}
		m.confirm = &confirmation{op: opClear, prompt: "Clear all skills?"}
		m.mode = modeConfirm
		return m, nil

	case key.Matches(msg, m.keys.Category):
		s, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editing = s.Name
		return m.openInput(modeCategory, "category", s.CategoryLabel(), m.view.Categories)

	case key.Matches(msg, m.keys.Import):
		return m.openInput(modeImport, "path to a skills folder", "", nil)

	case key.Matches(msg, m.keys.Export):
		return m.startAction("Exporting", m.exportCmd())

	case key.Matches(msg, m.keys.Filter):
		return m.openInput(modeFilter, "filter by name", m.filter, nil)

	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
		return m, nil
	}
	return m, nil
}

func (m model) openInput(mode uiMode, placeholder, value string, suggestions []string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.SetSuggestions(suggestions)
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m model) closeInput() model {
	m.input.Blur()
	m.input.Reset()
	m.editing = ""
	m.mode = modeList
	return m
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == modeFilter {
			m.filter = ""
			m.refresh()
		}
		return m.closeInput(), nil

	case tea.KeyEnter:
		value := m.input.Value()
		mode, editing := m.mode, m.editing
		m = m.closeInput()

		switch mode {
		case modeCategory:
			return m.startAction("Saving", m.categoryCmd(editing, value))
		case modeImport:
			if strings.TrimSpace(value) == "" {
				return m, nil
			}
			return m.startAction("Importing", m.importCmd(strings.TrimSpace(value)))
		default:
			m.filter = strings.TrimSpace(value)
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeFilter {
		m.filter = strings.TrimSpace(m.input.Value())
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch msg.String() {
	case "y", "Y":
		m.confirm = nil
		m.mode = modeList
		if c.op == opClear {
			return m.startAction("Clearing", m.clearCmd())
		}
		return m.startAction("Deleting", m.deleteCmd(c.name))
	case "n", "N", "esc":
		m.confirm = nil
		m.mode = modeList
	}
	return m, nil
}
