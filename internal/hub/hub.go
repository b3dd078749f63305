// Package hub is the local host for remote activation. Target pages connect
// to it over a websocket and announce themselves with a ready message; the
// hub tracks them as tabs and relays inject messages to them. It implements
// activation.Tabs in-process and serves the same operations over HTTP for
// other skillsync processes.
package hub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillsync/skillsync/internal/activation"
)

// TabFragment is the URL fragment key carrying a hub-assigned tab id to a
// page the hub opened.
const TabFragment = "skillsync-tab"

// DefaultHandshakeTimeout is how long a connecting page has to send its
// ready message.
const DefaultHandshakeTimeout = 10 * time.Second

// DefaultReservationTTL is how long a pending tab nobody is waiting on
// stays claimable before it is dropped.
const DefaultReservationTTL = 5 * time.Second

// sendBuffer is the per-page outbound queue length.
const sendBuffer = 16

var (
	// ErrUnknownTab is returned for a tab id the hub does not know.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrTabNotConnected is returned when messaging a tab whose page has not
	// completed the handshake.
	ErrTabNotConnected = errors.New("tab has no connected page")
)

// Opener opens a URL in a browser.
type Opener func(url string) error

// Config configures a Hub.
type Config struct {
	// Opener is called by Create. Nil means tabs are only reserved; a page
	// has to be pointed at the hub some other way.
	Opener           Opener
	HandshakeTimeout time.Duration
	// ReservationTTL bounds how long a pending tab outlives its last
	// AwaitReady caller.
	ReservationTTL time.Duration
}

// tab is the hub's record of one browser tab.
type tab struct {
	activation.Tab
	opened  string        // URL passed to Create, empty for self-announced pages
	ready   chan struct{} // closed when a page completes the handshake
	outbox  chan activation.Message

	waiters   int       // AwaitReady calls in progress
	idleSince time.Time // last time waiters dropped to zero
}

// expired reports whether a pending reservation has been abandoned.
func (t *tab) expired(now time.Time, ttl time.Duration) bool {
	return !t.Ready && t.waiters == 0 && now.Sub(t.idleSince) > ttl
}

// Hub tracks connected pages. It is safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	tabs   map[string]*tab
	order  []string // ids in creation order
	cfg    Config
	logger *zap.Logger
}

// New creates a hub.
func New(cfg Config, logger *zap.Logger) *Hub {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = DefaultReservationTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		tabs:   make(map[string]*tab),
		cfg:    cfg,
		logger: logger,
	}
}

var _ activation.Tabs = (*Hub)(nil)

// Query implements activation.Tabs. Only tabs with a connected page are
// returned, in the order they were created.
func (h *Hub) Query(_ context.Context, pattern string) ([]activation.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := []activation.Tab{}
	for _, id := range h.order {
		t := h.tabs[id]
		if !t.Ready {
			continue
		}
		if pattern == "" || activation.MatchURL(pattern, t.URL) {
			out = append(out, t.Tab)
		}
	}
	return out, nil
}

// Create implements activation.Tabs.
func (h *Hub) Create(_ context.Context, rawURL string) (activation.Tab, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return activation.Tab{}, fmt.Errorf("invalid tab url %q", rawURL)
	}

	id := uuid.New().String()
	t := &tab{
		Tab:       activation.Tab{ID: id, URL: rawURL},
		opened:    rawURL,
		ready:     make(chan struct{}),
		idleSince: time.Now(),
	}

	h.mu.Lock()
	h.prune(time.Now())
	h.tabs[id] = t
	h.order = append(h.order, id)
	h.mu.Unlock()

	h.logger.Info("tab created", zap.String("tab", id), zap.String("url", rawURL))

	if h.cfg.Opener != nil {
		u.Fragment = TabFragment + "=" + id
		if err := h.cfg.Opener(u.String()); err != nil {
			h.remove(id)
			return activation.Tab{}, fmt.Errorf("opening browser: %w", err)
		}
	}
	return t.Tab, nil
}

// Activate implements activation.Tabs. The page is asked to focus its
// prompt and becomes the hub's active tab.
func (h *Hub) Activate(ctx context.Context, id string) error {
	if err := h.Send(ctx, id, activation.Message{Action: activation.ActionActivate}); err != nil {
		return err
	}
	h.mu.Lock()
	for _, t := range h.tabs {
		t.Active = t.ID == id
	}
	h.mu.Unlock()
	return nil
}

// Send implements activation.Tabs. Delivery is fire-and-forget: the message
// is queued for the page's writer and no reply is awaited.
func (h *Hub) Send(_ context.Context, id string, msg activation.Message) error {
	h.mu.Lock()
	t, ok := h.tabs[id]
	var outbox chan activation.Message
	if ok && t.Ready {
		outbox = t.outbox
	}
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	if outbox == nil {
		return fmt.Errorf("%w: %s", ErrTabNotConnected, id)
	}

	select {
	case outbox <- msg:
		h.logger.Debug("message queued", zap.String("tab", id), zap.String("action", msg.Action))
		return nil
	default:
		return fmt.Errorf("tab %s send buffer full", id)
	}
}

// AwaitReady implements activation.Tabs. A pending tab that nobody waits
// on any more expires after the reservation TTL, so a page connecting later
// is not handed to an activation that already gave up.
func (h *Hub) AwaitReady(ctx context.Context, id string) error {
	h.mu.Lock()
	t, ok := h.tabs[id]
	if ok {
		t.waiters++
	}
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	defer func() {
		h.mu.Lock()
		t.waiters--
		if t.waiters == 0 {
			t.idleSince = time.Now()
		}
		h.mu.Unlock()
	}()

	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tabs returns a snapshot of every tab, connected or pending. Abandoned
// reservations are dropped first.
func (h *Hub) Tabs() []activation.Tab {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prune(time.Now())
	out := make([]activation.Tab, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.tabs[id].Tab)
	}
	return out
}

// attach binds a page that completed the handshake to a tab and returns the
// tab id and its outbox. A page claims, in order: the tab named in its
// handshake, the oldest pending tab opened for the same host, or a new tab.
func (h *Hub) attach(hello activation.Message) (string, chan activation.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t := h.claim(hello)
	if t == nil {
		id := uuid.New().String()
		t = &tab{
			Tab:   activation.Tab{ID: id},
			ready: make(chan struct{}),
		}
		h.tabs[id] = t
		h.order = append(h.order, id)
	}

	t.URL = stripTabFragment(hello.URL)
	t.Ready = true
	t.outbox = make(chan activation.Message, sendBuffer)
	close(t.ready)
	return t.ID, t.outbox
}

// claim finds a pending tab for a handshake. A tab someone is waiting on
// wins over an idle one. Caller holds h.mu.
func (h *Hub) claim(hello activation.Message) *tab {
	h.prune(time.Now())
	if hello.Tab != "" {
		if t, ok := h.tabs[hello.Tab]; ok && !t.Ready {
			return t
		}
	}
	pageHost := hostOf(hello.URL)
	var idle *tab
	for _, id := range h.order {
		t := h.tabs[id]
		if t.Ready || t.opened == "" || hostOf(t.opened) != pageHost {
			continue
		}
		if t.waiters > 0 {
			return t
		}
		if idle == nil {
			idle = t
		}
	}
	return idle
}

// prune drops abandoned reservations. Caller holds h.mu.
func (h *Hub) prune(now time.Time) {
	kept := h.order[:0]
	for _, id := range h.order {
		if t := h.tabs[id]; t.expired(now, h.cfg.ReservationTTL) {
			delete(h.tabs, id)
			h.logger.Info("tab reservation expired", zap.String("tab", id))
			continue
		}
		kept = append(kept, id)
	}
	h.order = kept
}

// detach forgets a tab whose page disconnected.
func (h *Hub) detach(id string) {
	h.remove(id)
	h.logger.Info("page disconnected", zap.String("tab", id))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.tabs, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func stripTabFragment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if v, err := url.ParseQuery(u.Fragment); err == nil && v.Has(TabFragment) {
		u.Fragment = ""
	}
	return u.String()
}

// TabIDFromURL extracts a hub-assigned tab id from a page URL's fragment.
func TabIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	v, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return ""
	}
	return v.Get(TabFragment)
}
