package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skillsync/skillsync/internal/hub"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tab hub that connects pages to the skill panel",
		Long: `Runs the hub on a local address. Page agents ("skillsync page") connect to it
over a websocket and announce their URL; the skill panel and "skillsync use"
find a matching tab through its REST API, opening a new browser tab when none
is connected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setupSettings(""); err != nil {
				return err
			}
			if addr == "" {
				addr = a.settings.Hub.Addr
			}

			cfg := hub.Config{HandshakeTimeout: a.settings.Hub.HandshakeTimeout.Std()}
			if a.settings.OpenBrowser() && !noBrowser {
				cfg.Opener = hub.OpenBrowser
			}
			h := hub.New(cfg, a.logger)
			return serveHTTP(cmd.Context(), addr, h.Handler(), a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open browser tabs; wait for pages to connect")
	return cmd
}

// serveHTTP serves handler on addr until ctx is done, then drains in-flight
// requests.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("hub listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("hub shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
