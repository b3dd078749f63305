package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/registry"
	"github.com/skillsync/skillsync/internal/surface"
)

type fakeActivator struct {
	got []string
	err error
}

func (a *fakeActivator) Activate(_ context.Context, content string) error {
	if a.err != nil {
		return a.err
	}
	a.got = append(a.got, content)
	return nil
}

func newTestModel(t *testing.T, variant surface.Variant, skills ...registry.Skill) (model, *registry.MemoryStore, *fakeActivator) {
	t.Helper()
	ctx := context.Background()
	store := registry.NewMemoryStore()
	if err := store.Save(ctx, &registry.Registry{Skills: skills}); err != nil {
		t.Fatal(err)
	}
	act := &fakeActivator{}
	s := surface.New(store, act, variant, nil)

	m := newModel(ctx, s, t.TempDir(), "", 80)
	m.input.Cursor.SetMode(cursor.CursorStatic)
	m = drain(t, m, m.Init())
	return m, store, act
}

// drain runs cmd and feeds the model's own messages back into Update until
// nothing is left. Spinner ticks, blinks and quit messages are dropped.
func drain(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case loadedMsg, actionDoneMsg:
		next, c := m.Update(msg)
		m = drain(t, next.(model), c)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends keys one at a time, draining each resulting command.
func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = drain(t, next.(model), cmd)
	}
	return m
}

func itemNames(m model) []string {
	var names []string
	for _, s := range m.items {
		names = append(names, s.Name)
	}
	return names
}

func storedNames(t *testing.T, store *registry.MemoryStore) []string {
	t.Helper()
	reg, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return reg.Names()
}

var sample = []registry.Skill{
	{Name: "Writer", Content: "W", Category: "Docs"},
	{Name: "Linter", Content: "L", Category: "Code"},
	{Name: "Reviewer", Content: "R", Category: "Code"},
}

func TestPopupListsInRegistryOrder(t *testing.T) {
	m, _, _ := newTestModel(t, surface.Popup, sample...)

	if m.mode != modeList {
		t.Fatalf("mode = %v, want list", m.mode)
	}
	got := strings.Join(itemNames(m), ",")
	if got != "Writer,Linter,Reviewer" {
		t.Errorf("items = %s", got)
	}
	view := m.View()
	for _, name := range []string{"Skill Registry", "Writer", "Linter", "Reviewer"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing %q", name)
		}
	}
}

func TestPopupEmptyHint(t *testing.T) {
	m, _, _ := newTestModel(t, surface.Popup)
	if !strings.Contains(m.View(), emptyHint) {
		t.Errorf("view = %q, want empty hint", m.View())
	}
}

func TestPopupUse(t *testing.T) {
	m, _, act := newTestModel(t, surface.Popup, sample...)

	m = press(t, m, "down", "enter")
	if len(act.got) != 1 || act.got[0] != "L" {
		t.Fatalf("activator got %v, want [L]", act.got)
	}
	if m.notice != "Sent Linter." || m.noticeIsErr {
		t.Errorf("notice = %q (err=%v)", m.notice, m.noticeIsErr)
	}
	if m.mode != modeList {
		t.Errorf("popup should stay open, mode = %v", m.mode)
	}

	// The notice goes away on the next key.
	m = press(t, m, "down")
	if m.notice != "" {
		t.Errorf("notice = %q after key press", m.notice)
	}
}

func TestUseInputNotFound(t *testing.T) {
	m, _, act := newTestModel(t, surface.Popup, sample...)
	act.err = activation.ErrInputNotFound

	m = press(t, m, "u")
	if !m.noticeIsErr || !strings.Contains(m.notice, "Could not find the chat input box") {
		t.Errorf("notice = %q (err=%v)", m.notice, m.noticeIsErr)
	}
}

func TestDeleteConfirm(t *testing.T) {
	m, store, _ := newTestModel(t, surface.Popup, sample...)

	m = press(t, m, "d")
	if m.mode != modeConfirm || !strings.Contains(m.View(), `delete "Writer"`) {
		t.Fatalf("expected confirmation, view:\n%s", m.View())
	}
	m = press(t, m, "n")
	if got := strings.Join(storedNames(t, store), ","); got != "Writer,Linter,Reviewer" {
		t.Errorf("declined delete changed storage: %s", got)
	}

	m = press(t, m, "d", "y")
	if got := strings.Join(storedNames(t, store), ","); got != "Linter,Reviewer" {
		t.Errorf("stored = %s", got)
	}
	if got := strings.Join(itemNames(m), ","); got != "Linter,Reviewer" {
		t.Errorf("items = %s", got)
	}
}

func TestClearConfirm(t *testing.T) {
	m, store, _ := newTestModel(t, surface.Popup, sample...)

	m = press(t, m, "X", "esc")
	if len(storedNames(t, store)) != 3 {
		t.Fatal("esc should cancel clear")
	}
	m = press(t, m, "X", "y")
	if len(storedNames(t, store)) != 0 {
		t.Errorf("stored = %v, want empty", storedNames(t, store))
	}
	if !strings.Contains(m.View(), emptyHint) {
		t.Error("expected empty hint after clear")
	}
}

func TestEditCategory(t *testing.T) {
	m, store, _ := newTestModel(t, surface.Popup, sample...)

	m = press(t, m, "c")
	if m.mode != modeCategory || m.input.Value() != "Docs" {
		t.Fatalf("mode = %v, input = %q", m.mode, m.input.Value())
	}
	m = press(t, m, "ctrl+u", "Prose", "enter")

	reg, _ := store.Load(context.Background())
	s, _ := reg.Lookup("Writer")
	if s.Category != "Prose" {
		t.Errorf("category = %q, want Prose", s.Category)
	}

	// A blank label falls back to the default category.
	m = press(t, m, "c", "ctrl+u", "enter")
	reg, _ = store.Load(context.Background())
	s, _ = reg.Lookup("Writer")
	if s.Category != registry.DefaultCategory {
		t.Errorf("category = %q, want %q", s.Category, registry.DefaultCategory)
	}
}

func TestEditCategoryEscCancels(t *testing.T) {
	m, store, _ := newTestModel(t, surface.Popup, sample...)

	m = press(t, m, "c", "ctrl+u", "Other", "esc")
	if m.mode != modeList {
		t.Errorf("mode = %v", m.mode)
	}
	reg, _ := store.Load(context.Background())
	if s, _ := reg.Lookup("Writer"); s.Category != "Docs" {
		t.Errorf("category = %q, want unchanged", s.Category)
	}
}

func writeSkill(t *testing.T, root string, parts ...string) {
	t.Helper()
	dir := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte("# "+parts[len(parts)-1]), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImport(t *testing.T) {
	m, store, _ := newTestModel(t, surface.Popup)

	root := filepath.Join(t.TempDir(), "skills")
	writeSkill(t, root, "Alpha")
	writeSkill(t, root, "Beta")

	m = press(t, m, "i", root, "enter")
	if m.notice != "Imported 2 new skills!" {
		t.Errorf("notice = %q", m.notice)
	}
	if got := len(storedNames(t, store)); got != 2 {
		t.Errorf("stored %d skills, want 2", got)
	}

	// Importing again adds nothing.
	m = press(t, m, "i", root, "enter")
	if m.notice != "Imported 0 new skills!" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestImportNoSkillFiles(t *testing.T) {
	m, _, _ := newTestModel(t, surface.Popup)

	m = press(t, m, "i", t.TempDir(), "enter")
	if !m.noticeIsErr || m.notice != "No SKILL.md files found in this folder!" {
		t.Errorf("notice = %q (err=%v)", m.notice, m.noticeIsErr)
	}
}

func TestExport(t *testing.T) {
	for _, tc := range []struct {
		variant surface.Variant
		file    string
		pretty  bool
	}{
		{surface.Popup, "skill_registry_backup.json", false},
		{surface.Modal, "gemini_skills_backup.json", true},
	} {
		t.Run(tc.variant.String(), func(t *testing.T) {
			m, _, _ := newTestModel(t, tc.variant, sample...)
			if tc.variant == surface.Modal {
				m = press(t, m, "s")
			}
			m = press(t, m, "e")

			data, err := os.ReadFile(filepath.Join(m.exportDir, tc.file))
			if err != nil {
				t.Fatalf("export not written: %v (notice %q)", err, m.notice)
			}
			if got := strings.Contains(string(data), "\n  "); got != tc.pretty {
				t.Errorf("indented = %v, want %v:\n%s", got, tc.pretty, data)
			}
			if !strings.Contains(string(data), `"skills"`) {
				t.Errorf("export = %s", data)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	m, _, act := newTestModel(t, surface.Popup, sample...)

	m = press(t, m, "/", "rev")
	if got := strings.Join(itemNames(m), ","); got != "Reviewer" {
		t.Errorf("live filter items = %s", got)
	}
	m = press(t, m, "enter")
	if m.mode != modeList || m.filter != "rev" {
		t.Fatalf("mode = %v, filter = %q", m.mode, m.filter)
	}

	m = press(t, m, "enter")
	if len(act.got) != 1 || act.got[0] != "R" {
		t.Errorf("activator got %v", act.got)
	}

	m = press(t, m, "esc")
	if m.filter != "" || len(m.items) != 3 {
		t.Errorf("esc should clear the filter, items = %v", itemNames(m))
	}
}

func TestModalLifecycle(t *testing.T) {
	m, _, act := newTestModel(t, surface.Modal, sample...)

	if m.mode != modeClosed {
		t.Fatalf("mode = %v, want closed", m.mode)
	}
	if !strings.Contains(m.View(), "📂 Skills") {
		t.Errorf("closed view = %q", m.View())
	}

	m = press(t, m, "s")
	if m.mode != modeList {
		t.Fatalf("mode = %v, want list", m.mode)
	}
	// Grouped by category label, registry order inside a group.
	if got := strings.Join(itemNames(m), ","); got != "Linter,Reviewer,Writer" {
		t.Errorf("items = %s", got)
	}
	if m.headers[0] != "Code" || m.headers[2] != "Docs" {
		t.Errorf("headers = %v", m.headers)
	}
	view := m.View()
	if !strings.Contains(view, "Skill Manager") || !strings.Contains(view, "Code") {
		t.Errorf("open view:\n%s", view)
	}

	m = press(t, m, "down", "enter")
	if len(act.got) != 1 || act.got[0] != "R" {
		t.Errorf("activator got %v", act.got)
	}
	if m.mode != modeClosed {
		t.Errorf("modal should close after use, mode = %v", m.mode)
	}

	m = press(t, m, "enter", "esc")
	if m.mode != modeClosed {
		t.Errorf("esc should close, mode = %v", m.mode)
	}
}

func TestModalClosesAfterFailedUse(t *testing.T) {
	m, _, act := newTestModel(t, surface.Modal, sample...)
	act.err = activation.ErrInputNotFound

	m = press(t, m, "s", "enter")
	if m.mode != modeClosed {
		t.Errorf("mode = %v, want closed", m.mode)
	}
	if !m.noticeIsErr || !strings.Contains(m.View(), "Could not find the chat input box") {
		t.Errorf("closed view should carry the notice:\n%s", m.View())
	}
}

func TestModalReloadsOnOpen(t *testing.T) {
	m, store, _ := newTestModel(t, surface.Modal, sample...)

	// Another process changes storage while the modal is closed.
	if err := store.Save(context.Background(), &registry.Registry{Skills: sample[:1]}); err != nil {
		t.Fatal(err)
	}
	m = press(t, m, "s")
	if got := strings.Join(itemNames(m), ","); got != "Writer" {
		t.Errorf("items = %s, want reloaded registry", got)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, surface.Popup, sample...)
	next, cmd := m.Update(keyMsg("q"))
	if !next.(model).quitting || cmd == nil {
		t.Error("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPreviewToggle(t *testing.T) {
	m, _, _ := newTestModel(t, surface.Popup, registry.Skill{Name: "Doc", Content: "---\nname: x\n---\n# Heading\n\nBody text"})
	m = press(t, m, "p")
	if !m.preview {
		t.Fatal("preview not enabled")
	}
	view := m.View()
	if !strings.Contains(view, "Heading") || strings.Contains(view, "name: x") {
		t.Errorf("preview should render content without frontmatter:\n%s", view)
	}
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m, _, act := newTestModel(t, surface.Popup, sample...)
	m.busy = "Activating"
	next, cmd := m.Update(keyMsg("enter"))
	if cmd != nil || len(act.got) != 0 {
		t.Error("keys must be ignored while an action runs")
	}
	if next.(model).busy == "" {
		t.Error("busy flag cleared by key press")
	}
}
