package hub

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/skillsync/skillsync/internal/activation"
)

// TerminalDocument stands in for a target page when the page agent runs in
// a terminal. It exposes a single prompt element under the configured
// selectors. Inserted text is appended to the prompt buffer, echoed to an
// io.Writer and, optionally, copied to the system clipboard so it can be
// pasted into a real browser.
type TerminalDocument struct {
	mu        sync.Mutex
	out       io.Writer
	selectors map[string]bool
	clipboard bool
	prompt    strings.Builder
	focused   bool
}

// NewTerminalDocument creates a document whose prompt matches selectors.
// Nil selectors expose the prompt under every default selector.
func NewTerminalDocument(out io.Writer, selectors []string, useClipboard bool) *TerminalDocument {
	if selectors == nil {
		selectors = activation.DefaultSelectors
	}
	d := &TerminalDocument{
		out:       out,
		selectors: make(map[string]bool, len(selectors)),
		clipboard: useClipboard && !clipboard.Unsupported,
	}
	for _, s := range selectors {
		d.selectors[s] = true
	}
	return d
}

// Query implements activation.Document.
func (d *TerminalDocument) Query(selector string) (activation.Element, bool) {
	if !d.selectors[selector] {
		return nil, false
	}
	return (*terminalPrompt)(d), true
}

// Prompt returns the text inserted so far.
func (d *TerminalDocument) Prompt() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prompt.String()
}

// Focused reports whether the prompt has been focused.
func (d *TerminalDocument) Focused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

type terminalPrompt TerminalDocument

func (p *terminalPrompt) Focus() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused = true
	return nil
}

func (p *terminalPrompt) InsertText(text string) error {
	p.mu.Lock()
	p.prompt.WriteString(text)
	p.mu.Unlock()

	if p.out != nil {
		if _, err := fmt.Fprintf(p.out, "%s\n", text); err != nil {
			return err
		}
	}
	if p.clipboard {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
	}
	return nil
}
