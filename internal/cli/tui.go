package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/hub"
	"github.com/skillsync/skillsync/internal/surface"
	"github.com/skillsync/skillsync/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var modal, altScreen bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive skill panel",
		Long: `Opens the skill panel.

The default panel lists skills in import order and sends a used skill to the
chat tab through a running "skillsync serve" hub. With --modal the panel
starts closed behind a trigger line, groups skills by category, and inserts a
used skill into the local prompt buffer (copied to the clipboard).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context(), modal, altScreen)
		},
	}
	cmd.Flags().BoolVar(&modal, "modal", false, "start as the grouped in-page modal")
	cmd.Flags().BoolVar(&altScreen, "alt-screen", false, "run full screen")
	return cmd
}

func (a *app) runTUI(ctx context.Context, modal, altScreen bool) error {
	variant := surface.Popup
	act := a.remoteActivator()
	usedNotice := "Sent %s to the chat tab."
	if modal {
		variant = surface.Modal
		// Resolved after setup so configured selectors apply.
		act = activation.ActivatorFunc(func(ctx context.Context, content string) error {
			doc := hub.NewTerminalDocument(nil, a.settings.Target.Selectors, true)
			return activation.NewInPage(doc, a.settings.Target.Selectors, a.logger).Activate(ctx, content)
		})
		usedNotice = "Inserted %s into the prompt (copied to clipboard)."
	}

	s, err := a.openSurface(ctx, variant, act, logFile())
	if err != nil {
		return err
	}
	return tui.New(tui.AppConfig{
		Surface:    s,
		UsedNotice: usedNotice,
		AltScreen:  altScreen,
	}).Run(ctx)
}
