package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Exchange is an intercepted response together with the URL that was requested.
type Exchange struct {
	URL        string
	StatusCode int
	Header     http.Header
	// Body is the raw body, still encoded as described by the Content-Encoding header.
	Body []byte
}

// SessionOptions configure a new browser session.
type SessionOptions struct {
	// WatchedPaths are URL substrings whose responses are captured for WaitForMatchingExchange.
	WatchedPaths []string
	// Headless hides the browser window.
	Headless bool
	// BrowserPath is an explicit browser binary. Empty means auto-detect or download.
	BrowserPath string
}

// Session is one isolated browser instance driving a single page.
type Session interface {
	// Navigate opens url in the page.
	Navigate(ctx context.Context, url string) error
	// Fill waits for the element matching selector, clears it and types value.
	Fill(ctx context.Context, selector, value string) error
	// Click waits until the element is visible, enabled and has not moved for settle, then clicks it.
	Click(ctx context.Context, selector string, settle time.Duration) error
	// WaitForMatchingExchange returns the first captured exchange whose URL contains pathPattern.
	// Exchanges captured before the call are buffered.
	WaitForMatchingExchange(ctx context.Context, pathPattern string) (*Exchange, error)
	// Close shuts the browser down and removes its profile. It is safe to call more than once.
	Close(ctx context.Context) error
}

// SessionFactory launches browser sessions.
type SessionFactory interface {
	Open(ctx context.Context, opts SessionOptions) (Session, error)
}

// matchesPath is the only rule used to recognize intercepted responses:
// a case-sensitive substring match against the full URL.
func matchesPath(url, pathPattern string) bool {
	return pathPattern != "" && strings.Contains(url, pathPattern)
}
