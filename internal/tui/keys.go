package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list bindings.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Use      key.Binding
	Delete   key.Binding
	Category key.Binding
	Import   key.Binding
	Export   key.Binding
	Clear    key.Binding
	Filter   key.Binding
	Preview  key.Binding
	Open     key.Binding
	Close    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Use:      key.NewBinding(key.WithKeys("enter", "u"), key.WithHelp("enter", "use")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
		Import:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Clear:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Preview:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Open:     key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "open skills")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// listHelp is the binding list shown under the skill list.
func (k keyMap) listHelp(modal bool) []key.Binding {
	b := []key.Binding{k.Use, k.Delete, k.Category, k.Import, k.Export, k.Clear, k.Filter, k.Preview}
	if modal {
		return append(b, k.Close)
	}
	return append(b, k.Quit)
}
