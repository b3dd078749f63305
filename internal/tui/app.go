// Package tui implements the interactive skill manager using Bubble Tea.
//
// The same model renders both surfaces. The popup variant is always open
// and lists skills in registry order. The modal variant starts closed,
// showing only its trigger line, and groups skills by category once opened.
package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/skillsync/skillsync/internal/surface"
)

// AppConfig bundles everything the TUI needs from the CLI.
type AppConfig struct {
	Surface *surface.Surface
	// ExportDir is where exports are written. Defaults to the working
	// directory.
	ExportDir string
	// UsedNotice formats the notice after a successful Use; %s is the skill
	// name.
	UsedNotice string
	// AltScreen runs the program full screen.
	AltScreen bool
}

// App is the top-level TUI application.
type App struct {
	cfg AppConfig
}

// New creates a new TUI application.
func New(cfg AppConfig) *App {
	return &App{cfg: cfg}
}

// Run starts the Bubble Tea program and blocks until it exits.
func (a *App) Run(ctx context.Context) error {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	dir := a.cfg.ExportDir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}

	m := newModel(ctx, a.cfg.Surface, dir, a.cfg.UsedNotice, width)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if a.cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
