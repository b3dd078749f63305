package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
)

// newTextInput creates the single-line editor used for the category,
// import path and filter prompts.
func newTextInput(width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("> ")
	ti.CharLimit = 256
	ti.Width = max(width-4, 20)
	ti.ShowSuggestions = true
	return ti
}
