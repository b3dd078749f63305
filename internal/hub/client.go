package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skillsync/skillsync/internal/activation"
)

// Client reaches a running hub over HTTP. It implements activation.Tabs so
// a Remote activator in one process can drive pages connected to another.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the hub listening at addr, which may be a
// host:port or a full http URL.
func NewClient(addr string, hc *http.Client) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{base: strings.TrimRight(base, "/"), http: hc}
}

var _ activation.Tabs = (*Client)(nil)

// Ping checks that a hub is answering.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Query implements activation.Tabs.
func (c *Client) Query(ctx context.Context, pattern string) ([]activation.Tab, error) {
	var tabs []activation.Tab
	path := "/v1/tabs?match=" + url.QueryEscape(pattern)
	if err := c.do(ctx, http.MethodGet, path, nil, &tabs); err != nil {
		return nil, err
	}
	return tabs, nil
}

// Create implements activation.Tabs.
func (c *Client) Create(ctx context.Context, rawURL string) (activation.Tab, error) {
	var tab activation.Tab
	err := c.do(ctx, http.MethodPost, "/v1/tabs", map[string]string{"url": rawURL}, &tab)
	return tab, err
}

// Activate implements activation.Tabs.
func (c *Client) Activate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/v1/tabs/"+url.PathEscape(id)+"/activate", nil, nil)
}

// Send implements activation.Tabs.
func (c *Client) Send(ctx context.Context, id string, msg activation.Message) error {
	return c.do(ctx, http.MethodPost, "/v1/tabs/"+url.PathEscape(id)+"/messages", msg, nil)
}

// AwaitReady implements activation.Tabs. The hub caps each wait, so the
// client keeps polling until the tab is ready or ctx is done.
func (c *Client) AwaitReady(ctx context.Context, id string) error {
	for {
		wait := maxReadyWait
		if dl, ok := ctx.Deadline(); ok {
			wait = min(time.Until(dl), maxReadyWait)
			if wait <= 0 {
				return context.DeadlineExceeded
			}
		}
		path := fmt.Sprintf("/v1/tabs/%s/ready?timeout=%s", url.PathEscape(id), wait)
		err := c.do(ctx, http.MethodGet, path, nil, nil)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if se, ok := err.(*StatusError); ok && se.Code == http.StatusGatewayTimeout {
			continue
		}
		return err
	}
}

// StatusError is a non-2xx reply from the hub.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hub: %d %s", e.Code, e.Message)
}

// Unwrap maps hub status codes back onto the package's sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrUnknownTab
	case http.StatusConflict:
		return ErrTabNotConnected
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contacting hub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &eb) != nil || eb.Error == "" {
			eb.Error = strings.TrimSpace(string(raw))
		}
		return &StatusError{Code: resp.StatusCode, Message: eb.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding hub response: %w", err)
	}
	return nil
}
