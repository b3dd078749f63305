package hub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/skillsync/skillsync/internal/activation"
)

// Handler processes a message delivered to a page. activation.Receiver
// satisfies it.
type Handler interface {
	Handle(ctx context.Context, msg activation.Message) error
}

// PageAgent is the page side of the hub connection. It announces a page
// URL, then hands every message the hub relays to a Handler.
type PageAgent struct {
	hubAddr string
	pageURL string
	handler Handler
	logger  *zap.Logger
	dialer  *websocket.Dialer
}

// NewPageAgent creates an agent for the page at pageURL. A hub-assigned tab
// id in the URL fragment is sent back in the handshake.
func NewPageAgent(hubAddr, pageURL string, handler Handler, logger *zap.Logger) *PageAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageAgent{
		hubAddr: hubAddr,
		pageURL: pageURL,
		handler: handler,
		logger:  logger,
		dialer:  &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout},
	}
}

// WebsocketURL converts a hub address to its page endpoint.
func WebsocketURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid hub address %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid hub address %q: unsupported scheme", addr)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/pages/ws"
	return u.String(), nil
}

// Run connects to the hub and serves messages until ctx is done or the
// connection drops. onReady, if set, receives the tab id the hub assigned.
func (a *PageAgent) Run(ctx context.Context, onReady func(tabID string)) error {
	wsURL, err := WebsocketURL(a.hubAddr)
	if err != nil {
		return err
	}
	conn, _, err := a.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to hub at %s: %w", a.hubAddr, err)
	}
	defer conn.Close()

	hello := activation.Message{
		Action: activation.ActionReady,
		URL:    a.pageURL,
		Tab:    TabIDFromURL(a.pageURL),
	}
	if err := conn.WriteJSON(hello); err != nil {
		return fmt.Errorf("sending ready: %w", err)
	}

	var ack activation.Message
	conn.SetReadDeadline(time.Now().Add(DefaultHandshakeTimeout))
	if err := conn.ReadJSON(&ack); err != nil {
		return fmt.Errorf("waiting for hub: %w", err)
	}
	conn.SetReadDeadline(time.Time{})
	a.logger.Info("page ready", zap.String("tab", ack.Tab), zap.String("url", a.pageURL))
	if onReady != nil {
		onReady(ack.Tab)
	}

	// Unblock the read loop on cancellation.
	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		conn.Close()
	})
	defer stop()

	for {
		var msg activation.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading from hub: %w", err)
		}
		if err := a.handler.Handle(ctx, msg); err != nil {
			// Failures are reported on the page, never to the sender.
			if !errors.Is(err, context.Canceled) {
				a.logger.Warn("message failed", zap.String("action", msg.Action), zap.Error(err))
			}
		}
	}
}
