package utils

import "strings"

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

// headlessProductToken is how headless Chrome names itself in its User-Agent.
const headlessProductToken = "HeadlessChrome/"

// UserAgentProvider supplies the User-Agent of requests replayed on behalf of the browser.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// StaticUserAgentProvider returns a fixed desktop User-Agent.
type StaticUserAgentProvider struct {
	userAgent string
}

// NewStaticUserAgentProvider creates a provider for userAgent.
// A headless Chrome User-Agent is rewritten to the one a desktop Chrome would send.
func NewStaticUserAgentProvider(userAgent string) *StaticUserAgentProvider {
	return &StaticUserAgentProvider{userAgent: UnmaskHeadlessUserAgent(userAgent)}
}

// GetUserAgent returns the configured User-Agent.
func (p *StaticUserAgentProvider) GetUserAgent() string {
	return p.userAgent
}

// IsHeadlessUserAgent reports whether userAgent identifies headless Chrome.
func IsHeadlessUserAgent(userAgent string) bool {
	return strings.Contains(userAgent, headlessProductToken)
}

// UnmaskHeadlessUserAgent replaces the headless Chrome product token with the regular one.
func UnmaskHeadlessUserAgent(userAgent string) string {
	return strings.ReplaceAll(userAgent, headlessProductToken, "Chrome/")
}
