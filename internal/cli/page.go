package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/hub"
	"github.com/skillsync/skillsync/internal/output"
	"github.com/skillsync/skillsync/internal/surface"
	"github.com/skillsync/skillsync/internal/tui"
)

func newPageCmd(a *app) *cobra.Command {
	var pageURL string
	var noClipboard, ui bool
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Act as a chat page connected to the hub",
		Long: `Connects to the hub as a page at --url and waits for skills. Each delivered
skill is wrapped, printed, and copied to the clipboard so it can be pasted
into the chat. Exits when the hub goes away or on interrupt.

With --ui the page also shows the skill modal; skills used from it are
inserted into the same prompt without going through the hub.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ui {
				return a.runPageUI(cmd.Context(), pageURL, !noClipboard)
			}
			if err := a.setupSettings(""); err != nil {
				return err
			}
			agent, _ := a.pageAgent(pageURL, a.stdout, !noClipboard)
			return agent.Run(cmd.Context(), func(tabID string) {
				output.Messagef("Connected as tab %s. Waiting for skills...", tabID)
			})
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "page URL to announce (default: target base URL)")
	cmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "only print delivered skills")
	cmd.Flags().BoolVar(&ui, "ui", false, "show the skill modal on this page")
	return cmd
}

// pageAgent builds an agent announcing pageURL. Delivered skills go to the
// returned in-page target, which echoes to out when it is non-nil.
func (a *app) pageAgent(pageURL string, out io.Writer, useClipboard bool) (*hub.PageAgent, *activation.InPage) {
	if pageURL == "" {
		pageURL = a.settings.Target.BaseURL
	}
	selectors := a.settings.Target.Selectors
	doc := hub.NewTerminalDocument(out, selectors, useClipboard)
	page := activation.NewInPage(doc, selectors, a.logger)
	agent := hub.NewPageAgent(a.settings.Hub.Addr, pageURL, activation.NewReceiver(page), a.logger)
	return agent, page
}

// runPageUI connects a page to the hub in the background and shows the
// modal in the foreground. Closing the modal disconnects the page.
func (a *app) runPageUI(ctx context.Context, pageURL string, useClipboard bool) error {
	var page *activation.InPage
	act := activation.ActivatorFunc(func(ctx context.Context, content string) error {
		return page.Activate(ctx, content)
	})
	s, err := a.openSurface(ctx, surface.Modal, act, logFile())
	if err != nil {
		return err
	}

	var agent *hub.PageAgent
	agent, page = a.pageAgent(pageURL, nil, useClipboard)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := agent.Run(ctx, nil); err != nil {
			a.logger.Warn("page disconnected", zap.Error(err))
		}
	}()

	return tui.New(tui.AppConfig{
		Surface:    s,
		UsedNotice: "Inserted %s into the prompt (copied to clipboard).",
	}).Run(ctx)
}
