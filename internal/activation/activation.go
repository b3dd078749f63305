// Package activation delivers a skill's text into the target chat page.
//
// There are two contexts. In-page activation runs next to the page's
// document and inserts the wrapped text into the prompt box directly.
// Remote activation runs elsewhere: it finds or opens a tab showing the
// target application and sends it an inject message; the page side wraps
// and inserts the text on receipt.
package activation

import (
	"context"
	"errors"
)

// Message actions.
const (
	ActionInject   = "inject"   // sender → page: insert Content
	ActionReady    = "ready"    // page → host: listener registered
	ActionActivate = "activate" // host → page: bring the tab to front
)

// Default target application.
const (
	DefaultURLPattern = "*://gemini.google.com/*"
	DefaultBaseURL    = "https://gemini.google.com"
)

var (
	// ErrInputNotFound means the page has no editable prompt element.
	ErrInputNotFound = errors.New("could not find the chat input box, make sure you are in a chat")
	// ErrTabNotReady means a freshly opened tab never completed the ready
	// handshake before the timeout.
	ErrTabNotReady = errors.New("target page did not become ready")
)

// Message is the cross-context wire message.
type Message struct {
	Action  string `json:"action"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
	Tab     string `json:"tab,omitempty"`
}

// Activator delivers content to the target application.
type Activator interface {
	Activate(ctx context.Context, content string) error
}

// ActivatorFunc adapts a function to Activator.
type ActivatorFunc func(ctx context.Context, content string) error

// Activate calls f.
func (f ActivatorFunc) Activate(ctx context.Context, content string) error {
	return f(ctx, content)
}
