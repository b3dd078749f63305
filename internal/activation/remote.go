package activation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultReadyTimeout bounds the wait for a newly opened tab's handshake.
const DefaultReadyTimeout = 15 * time.Second

// Tab is a browser tab known to the host.
type Tab struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Ready  bool   `json:"ready"`
	Active bool   `json:"active"`
}

// Tabs is the host's tab and messaging API.
type Tabs interface {
	// Query returns the tabs whose URL matches a match pattern.
	Query(ctx context.Context, pattern string) ([]Tab, error)
	// Create opens a new tab at url. The tab is not ready until its page
	// completes the handshake.
	Create(ctx context.Context, url string) (Tab, error)
	// Activate focuses a tab.
	Activate(ctx context.Context, id string) error
	// Send delivers a message to a tab's page. No reply is read.
	Send(ctx context.Context, id string, msg Message) error
	// AwaitReady blocks until the tab's page has sent its ready message or
	// ctx is done.
	AwaitReady(ctx context.Context, id string) error
}

// State is a step of a remote activation.
type State int

const (
	StateNoTab State = iota
	StateTabFound
	StateActivated
	StateTabCreating
	StateTabReady
	StateMessageSent
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNoTab:
		return "no-tab"
	case StateTabFound:
		return "tab-found"
	case StateActivated:
		return "activated"
	case StateTabCreating:
		return "tab-creating"
	case StateTabReady:
		return "tab-ready"
	case StateMessageSent:
		return "message-sent"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RemoteConfig configures a Remote activator.
type RemoteConfig struct {
	URLPattern   string
	BaseURL      string
	ReadyTimeout time.Duration
	// OnState, if set, is called on every state transition.
	OnState func(State, Tab)
}

// Remote activates skills in a tab reached through Tabs.
type Remote struct {
	tabs   Tabs
	cfg    RemoteConfig
	logger *zap.Logger
}

// NewRemote creates a remote activator with defaults for unset fields.
func NewRemote(tabs Tabs, cfg RemoteConfig, logger *zap.Logger) *Remote {
	if cfg.URLPattern == "" {
		cfg.URLPattern = DefaultURLPattern
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{tabs: tabs, cfg: cfg, logger: logger}
}

// Activate implements Activator. The content is sent exactly as given; the
// receiving page adds the wrapper banners.
func (r *Remote) Activate(ctx context.Context, content string) error {
	r.transition(StateNoTab, Tab{})

	tabs, err := r.tabs.Query(ctx, r.cfg.URLPattern)
	if err != nil {
		return r.fail(Tab{}, fmt.Errorf("querying tabs: %w", err))
	}

	var tab Tab
	if len(tabs) > 0 {
		tab = tabs[0]
		r.transition(StateTabFound, tab)
		if err := r.tabs.Activate(ctx, tab.ID); err != nil {
			return r.fail(tab, fmt.Errorf("activating tab %s: %w", tab.ID, err))
		}
		r.transition(StateActivated, tab)
	} else {
		tab, err = r.tabs.Create(ctx, r.cfg.BaseURL)
		if err != nil {
			return r.fail(Tab{}, fmt.Errorf("opening %s: %w", r.cfg.BaseURL, err))
		}
		r.transition(StateTabCreating, tab)

		readyCtx, cancel := context.WithTimeout(ctx, r.cfg.ReadyTimeout)
		err = r.tabs.AwaitReady(readyCtx, tab.ID)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return r.fail(tab, ctx.Err())
			}
			return r.fail(tab, fmt.Errorf("%w within %s: %v", ErrTabNotReady, r.cfg.ReadyTimeout, err))
		}
		r.transition(StateTabReady, tab)
	}

	msg := Message{Action: ActionInject, Content: content}
	if err := r.tabs.Send(ctx, tab.ID, msg); err != nil {
		return r.fail(tab, fmt.Errorf("sending to tab %s: %w", tab.ID, err))
	}
	r.transition(StateMessageSent, tab)
	return nil
}

func (r *Remote) transition(s State, tab Tab) {
	r.logger.Debug("activation state", zap.Stringer("state", s), zap.String("tab", tab.ID))
	if r.cfg.OnState != nil {
		r.cfg.OnState(s, tab)
	}
}

func (r *Remote) fail(tab Tab, err error) error {
	r.logger.Warn("activation failed", zap.String("tab", tab.ID), zap.Error(err))
	r.transition(StateFailed, tab)
	return err
}
