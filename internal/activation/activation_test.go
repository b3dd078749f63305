package activation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeElement records focus and inserted text.
type fakeElement struct {
	focused  bool
	inserted []string
}

func (e *fakeElement) Focus() error { e.focused = true; return nil }

func (e *fakeElement) InsertText(text string) error {
	e.inserted = append(e.inserted, text)
	return nil
}

// fakeDocument maps selectors to elements.
type fakeDocument map[string]*fakeElement

func (d fakeDocument) Query(sel string) (Element, bool) {
	el, ok := d[sel]
	if !ok {
		return nil, false
	}
	return el, true
}

func TestWrap(t *testing.T) {
	got := Wrap("do the thing")
	want := "[Activating Skill Instructions]\n\ndo the thing\n\n[Skill Loaded. Please acknowledge.]"
	if got != want {
		t.Errorf("Wrap = %q, want %q", got, want)
	}
}

func TestInPage_SelectorFallback(t *testing.T) {
	textarea := &fakeElement{}
	doc := fakeDocument{`textarea[aria-label="Prompt"]`: textarea}

	if err := NewInPage(doc, nil, nil).Activate(context.Background(), "X"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !textarea.focused {
		t.Error("input was not focused")
	}
	if len(textarea.inserted) != 1 || textarea.inserted[0] != Wrap("X") {
		t.Errorf("inserted = %q", textarea.inserted)
	}
}

func TestInPage_PrefersFirstSelector(t *testing.T) {
	div := &fakeElement{}
	textarea := &fakeElement{}
	doc := fakeDocument{
		`div[contenteditable="true"]`:   div,
		`textarea[aria-label="Prompt"]`: textarea,
	}
	if err := NewInPage(doc, nil, nil).Activate(context.Background(), "X"); err != nil {
		t.Fatal(err)
	}
	if len(div.inserted) != 1 || len(textarea.inserted) != 0 {
		t.Errorf("div=%v textarea=%v", div.inserted, textarea.inserted)
	}
}

func TestInPage_NoInput(t *testing.T) {
	other := &fakeElement{}
	doc := fakeDocument{"input#search": other}

	err := NewInPage(doc, nil, nil).Activate(context.Background(), "X")
	if !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
	if len(other.inserted) != 0 {
		t.Error("text inserted into a non-prompt element")
	}
}

func TestReceiver_IgnoresUnknownAction(t *testing.T) {
	div := &fakeElement{}
	r := NewReceiver(NewInPage(fakeDocument{`div[contenteditable="true"]`: div}, nil, nil))
	if err := r.Handle(context.Background(), Message{Action: "ping"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Handle(context.Background(), Message{Action: ActionInject, Content: "Y"}); err != nil {
		t.Fatal(err)
	}
	if len(div.inserted) != 1 || div.inserted[0] != Wrap("Y") {
		t.Errorf("inserted = %q", div.inserted)
	}
}

func TestReceiver_ActivateWithoutInput(t *testing.T) {
	r := NewReceiver(NewInPage(fakeDocument{}, nil, nil))
	if err := r.Handle(context.Background(), Message{Action: ActionActivate}); err != nil {
		t.Errorf("activate on page without input: %v", err)
	}
}

func TestMatchURL(t *testing.T) {
	tests := []struct {
		pattern, url string
		want         bool
	}{
		{DefaultURLPattern, "https://gemini.google.com/app", true},
		{DefaultURLPattern, "https://gemini.google.com/app/abc123?hl=en", true},
		{DefaultURLPattern, "http://gemini.google.com/", true},
		{DefaultURLPattern, "https://gemini.google.com", true},
		{DefaultURLPattern, "https://evil.com/gemini.google.com/", false},
		{DefaultURLPattern, "ftp://gemini.google.com/", false},
		{DefaultURLPattern, "https://mail.google.com/", false},
		{"https://*.example.com/chat/*", "https://a.example.com/chat/1", true},
		{"https://*.example.com/chat/*", "https://example.com/chat/", true},
		{"https://*.example.com/chat/*", "https://a.example.com/other", false},
		{"not a pattern", "https://example.com/", false},
	}
	for _, tt := range tests {
		if got := MatchURL(tt.pattern, tt.url); got != tt.want {
			t.Errorf("MatchURL(%q, %q) = %v, want %v", tt.pattern, tt.url, got, tt.want)
		}
	}
}

// fakeTabs is a scripted Tabs implementation.
type fakeTabs struct {
	mu        sync.Mutex
	open      []Tab
	created   []string
	activated []string
	sent      []Message
	sentTo    []string
	readyErr  error
	readyWait time.Duration
}

func (f *fakeTabs) Query(_ context.Context, pattern string) ([]Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Tab
	for _, t := range f.open {
		if MatchURL(pattern, t.URL) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTabs) Create(_ context.Context, url string) (Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, url)
	return Tab{ID: "new", URL: url}, nil
}

func (f *fakeTabs) Activate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, id)
	return nil
}

func (f *fakeTabs) Send(_ context.Context, id string, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentTo = append(f.sentTo, id)
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTabs) AwaitReady(ctx context.Context, _ string) error {
	if f.readyWait > 0 {
		select {
		case <-time.After(f.readyWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.readyErr
}

func TestRemote_ExistingTab(t *testing.T) {
	tabs := &fakeTabs{open: []Tab{
		{ID: "other", URL: "https://example.com/"},
		{ID: "t1", URL: "https://gemini.google.com/app"},
	}}
	var states []State
	r := NewRemote(tabs, RemoteConfig{OnState: func(s State, _ Tab) { states = append(states, s) }}, nil)

	if err := r.Activate(context.Background(), "raw content"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if len(tabs.created) != 0 {
		t.Errorf("created tabs %v, want none", tabs.created)
	}
	if len(tabs.activated) != 1 || tabs.activated[0] != "t1" {
		t.Errorf("activated = %v", tabs.activated)
	}
	if len(tabs.sent) != 1 || tabs.sentTo[0] != "t1" {
		t.Fatalf("sent = %v to %v", tabs.sent, tabs.sentTo)
	}
	want := []State{StateNoTab, StateTabFound, StateActivated, StateMessageSent}
	if !equalStates(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestRemote_NoTabOpensBaseURL(t *testing.T) {
	tabs := &fakeTabs{}
	var states []State
	r := NewRemote(tabs, RemoteConfig{OnState: func(s State, _ Tab) { states = append(states, s) }}, nil)

	content := "  exact\ncontent  "
	if err := r.Activate(context.Background(), content); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if len(tabs.created) != 1 || tabs.created[0] != DefaultBaseURL {
		t.Errorf("created = %v", tabs.created)
	}
	if len(tabs.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(tabs.sent))
	}
	if got := tabs.sent[0]; got.Action != ActionInject || got.Content != content {
		t.Errorf("message = %+v, want unmodified inject", got)
	}
	want := []State{StateNoTab, StateTabCreating, StateTabReady, StateMessageSent}
	if !equalStates(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestRemote_ReadyTimeout(t *testing.T) {
	tabs := &fakeTabs{readyWait: time.Second}
	r := NewRemote(tabs, RemoteConfig{ReadyTimeout: 20 * time.Millisecond}, nil)

	err := r.Activate(context.Background(), "x")
	if !errors.Is(err, ErrTabNotReady) {
		t.Fatalf("expected ErrTabNotReady, got %v", err)
	}
	if len(tabs.sent) != 0 {
		t.Error("message sent to a tab that never became ready")
	}
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
