// Package cli implements the skillsync commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/clierr"
	"github.com/skillsync/skillsync/internal/config"
	"github.com/skillsync/skillsync/internal/hub"
	"github.com/skillsync/skillsync/internal/importer"
	"github.com/skillsync/skillsync/internal/logging"
	"github.com/skillsync/skillsync/internal/output"
	"github.com/skillsync/skillsync/internal/registry"
	"github.com/skillsync/skillsync/internal/surface"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries global flags and the state commands share.
type app struct {
	flagJSON    bool
	flagTable   bool
	flagNoColor bool
	flagStorage string
	flagDir     string

	// started is set once arguments have been validated and a command is
	// about to run. Errors before that are usage errors.
	started bool

	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	stdinTTY func() bool

	settings *config.Settings
	logger   *zap.Logger
	store    registry.Store
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		stdinTTY: func() bool {
			f, ok := stdin.(*os.File)
			return ok && term.IsTerminal(int(f.Fd()))
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "skillsync",
		Short: "Manage SKILL.md instruction packs and send them to a chat app",
		Long: `skillsync keeps a registry of reusable instruction packs imported from
folders of SKILL.md files, organizes them by category, and inserts a skill
into the chat prompt of a browser tab on request.

Run without a command to open the skill panel.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			a.started = true
			if a.flagNoColor || os.Getenv("NO_COLOR") != "" {
				output.DisableColor()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context(), false, false)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&a.flagJSON, "json", false, "output as JSON")
	pf.BoolVar(&a.flagTable, "table", false, "output as table")
	pf.BoolVar(&a.flagNoColor, "no-color", false, "disable color output")
	pf.StringVar(&a.flagStorage, "storage", "", "storage backend: file, redis, postgres, memory")
	pf.StringVar(&a.flagDir, "dir", "", "project directory for settings and .env (default: working directory)")

	root.AddCommand(
		newTUICmd(a),
		newImportCmd(a),
		newListCmd(a),
		newCategoriesCmd(a),
		newCategoryCmd(a),
		newDeleteCmd(a),
		newClearCmd(a),
		newExportCmd(a),
		newUseCmd(a),
		newServeCmd(a),
		newPageCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs the CLI and exits with its status code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes args and returns the exit code: 0 on success, 1 for errors
// the user can fix, 2 for internal errors.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runApp(newApp(stdin, stdout, stderr), args)
}

func runApp(a *app, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(a)
	root.SetArgs(args)

	_, err := root.ExecuteContextC(ctx)
	a.close()
	if err == nil {
		return 0
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		return silent.Code
	}

	var cliErr *clierr.Error
	if !a.started && !errors.As(err, &cliErr) {
		cliErr = clierr.Wrap(clierr.InvalidInput, err)
	} else {
		cliErr = classify(err)
	}
	if a.flagJSON || os.Getenv(output.EnvOutput) == "json" {
		output.JSONError(a.stdout, cliErr.Code, cliErr.Message, cliErr.Details)
	} else {
		fmt.Fprintln(a.stderr, "Error:", cliErr.Message)
	}
	return cliErr.ExitCode()
}

// classify maps an error to the CLI error it is reported as.
func classify(err error) *clierr.Error {
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr
	}
	var urlErr *url.Error
	switch {
	case errors.Is(err, registry.ErrSkillNotFound):
		return clierr.Wrap(clierr.SkillNotFound, err)
	case errors.Is(err, importer.ErrNoSkillFiles):
		return clierr.Wrap(clierr.NoSkillFiles, err)
	case errors.Is(err, activation.ErrInputNotFound):
		return clierr.Wrap(clierr.InputNotFound, err)
	case errors.Is(err, activation.ErrTabNotReady):
		return clierr.Wrap(clierr.TabNotReady, err)
	case errors.As(err, &urlErr):
		return clierr.Wrap(clierr.HubUnavailable, err)
	}
	return clierr.Wrap(clierr.InternalError, err)
}

// setup loads .env, settings, the logger and the store. logPath empty logs
// to stderr.
func (a *app) setup(ctx context.Context, logPath string) error {
	if err := a.setupSettings(logPath); err != nil {
		return err
	}
	st := a.settings.Storage
	store, err := registry.Open(ctx, registry.Options{
		Backend:     st.Backend,
		Path:        st.Path,
		RedisURL:    st.RedisURL,
		PostgresDSN: st.PostgresDSN,
		Key:         st.Key,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	a.store = store
	return nil
}

// setupSettings loads configuration and a logger without opening storage.
func (a *app) setupSettings(logPath string) error {
	dir := a.flagDir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
	}
	if err := config.LoadEnv(dir); err != nil {
		return err
	}
	settings, err := config.LoadSettings(dir)
	if err != nil {
		return clierr.Wrap(clierr.InvalidInput, err)
	}
	if a.flagStorage != "" {
		settings.Storage.Backend = a.flagStorage
	}
	a.settings = settings

	logger, err := logging.New(settings.LogLevel, logPath)
	if err != nil {
		return clierr.Wrap(clierr.InvalidInput, err)
	}
	a.logger = logger
	return nil
}

func (a *app) close() {
	if c, ok := a.store.(registry.Closer); ok {
		c.Close()
	}
	a.store = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openSurface sets up and loads a surface.
func (a *app) openSurface(ctx context.Context, variant surface.Variant, act activation.Activator, logPath string) (*surface.Surface, error) {
	if err := a.setup(ctx, logPath); err != nil {
		return nil, err
	}
	s := surface.New(a.store, act, variant, a.logger)
	if err := s.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	return s, nil
}

// remoteActivator delivers skills through a running hub. It is resolved
// lazily because settings are loaded after the surface is built.
func (a *app) remoteActivator() activation.Activator {
	return activation.ActivatorFunc(func(ctx context.Context, content string) error {
		client := hub.NewClient(a.settings.Hub.Addr, nil)
		remote := activation.NewRemote(client, activation.RemoteConfig{
			URLPattern:   a.settings.Target.URLPattern,
			BaseURL:      a.settings.Target.BaseURL,
			ReadyTimeout: a.settings.Hub.ReadyTimeout.Std(),
			OnState: func(s activation.State, tab activation.Tab) {
				a.logger.Debug("activation", zap.Stringer("state", s), zap.String("tab", tab.ID))
			},
		}, a.logger)
		return remote.Activate(ctx, content)
	})
}

func (a *app) format() output.Format {
	return output.Detect(a.flagJSON, a.flagTable)
}

// logFile is where interactive commands log, so output stays off the
// terminal the TUI draws on.
func logFile() string {
	dir, err := config.Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "skillsync.log")
	}
	return filepath.Join(dir, "skillsync.log")
}
