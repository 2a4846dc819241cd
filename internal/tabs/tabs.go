// Package tabs supplies the page being captured.
package tabs

import (
	"context"
	"errors"
	"strings"
)

// ErrNoTab is returned when there is no active page to capture.
var ErrNoTab = errors.New("no active tab")

// Tab is the page the user is looking at.
type Tab struct {
	URL string
}

// Provider returns the active tab.
type Provider interface {
	ActiveTab(ctx context.Context) (*Tab, error)
}

type contextKeyTab struct{}

// WithActiveTab attaches the active tab to ctx. Blank URLs are ignored.
func WithActiveTab(ctx context.Context, url string) context.Context {
	url = strings.TrimSpace(url)
	if url == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKeyTab{}, &Tab{URL: url})
}

// FromContext returns the tab attached by WithActiveTab.
func FromContext(ctx context.Context) (*Tab, bool) {
	tab, ok := ctx.Value(contextKeyTab{}).(*Tab)
	return tab, ok
}

// ContextProvider reads the active tab from the request context. Both the CLI
// and the control API attach the tab this way before triggering a workflow.
type ContextProvider struct{}

func (ContextProvider) ActiveTab(ctx context.Context) (*Tab, error) {
	tab, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoTab
	}
	return tab, nil
}
