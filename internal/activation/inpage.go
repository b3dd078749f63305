package activation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Wrapper banners placed around injected content.
const (
	bannerStart = "[Activating Skill Instructions]"
	bannerEnd   = "[Skill Loaded. Please acknowledge.]"
)

// DefaultSelectors lists the prompt element selectors tried in order.
var DefaultSelectors = []string{
	`div[contenteditable="true"]`,
	`textarea[aria-label="Prompt"]`,
}

// Element is an editable element on the page.
type Element interface {
	Focus() error
	// InsertText inserts at the caret using the page's own text insertion,
	// so input listeners on the page observe the change.
	InsertText(text string) error
}

// Document is the page the in-page context can see.
type Document interface {
	Query(selector string) (Element, bool)
}

// Wrap formats content the way it is inserted into the prompt box.
func Wrap(content string) string {
	return bannerStart + "\n\n" + content + "\n\n" + bannerEnd
}

// InPage activates skills in a document the caller can reach directly.
type InPage struct {
	doc       Document
	selectors []string
	logger    *zap.Logger
}

// NewInPage creates an in-page activator. A nil or empty selector list uses
// DefaultSelectors.
func NewInPage(doc Document, selectors []string, logger *zap.Logger) *InPage {
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InPage{doc: doc, selectors: selectors, logger: logger}
}

// FindInput returns the first element matching the selector list.
func (p *InPage) FindInput() (Element, bool) {
	for _, sel := range p.selectors {
		if el, ok := p.doc.Query(sel); ok {
			return el, true
		}
	}
	return nil, false
}

// Activate implements Activator. Without a prompt element nothing is
// inserted and ErrInputNotFound is returned.
func (p *InPage) Activate(_ context.Context, content string) error {
	el, ok := p.FindInput()
	if !ok {
		p.logger.Warn("prompt input not found", zap.Strings("selectors", p.selectors))
		return ErrInputNotFound
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focusing input: %w", err)
	}
	if err := el.InsertText(Wrap(content)); err != nil {
		return fmt.Errorf("inserting text: %w", err)
	}
	p.logger.Info("skill inserted", zap.Int("bytes", len(content)))
	return nil
}

// Focus brings the prompt element into focus without inserting anything.
func (p *InPage) Focus() error {
	el, ok := p.FindInput()
	if !ok {
		return ErrInputNotFound
	}
	return el.Focus()
}

// Receiver is the page side of remote activation.
type Receiver struct {
	page *InPage
}

// NewReceiver creates a receiver that inserts into page.
func NewReceiver(page *InPage) *Receiver {
	return &Receiver{page: page}
}

// Handle applies one incoming message. Unknown actions are ignored.
func (r *Receiver) Handle(ctx context.Context, msg Message) error {
	switch msg.Action {
	case ActionInject:
		return r.page.Activate(ctx, msg.Content)
	case ActionActivate:
		// A page without a prompt box can still be brought forward.
		if err := r.page.Focus(); err != nil && !errors.Is(err, ErrInputNotFound) {
			return err
		}
		return nil
	default:
		return nil
	}
}
