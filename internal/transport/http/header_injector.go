package http

import (
	"net/http"

	"github.com/oshokin/xolta-token/internal/utils"
)

// HeaderInjector is a http.RoundTripper that fills in headers a replayed browser request may lack.
// It sets User-Agent from a provider and advertises every content coding the decoder supports.
// Present headers are kept, except a User-Agent that gives away headless Chrome.
type HeaderInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider provides the User-Agent string to inject.
	userAgentProvider utils.UserAgentProvider
}

// NewHeaderInjector creates and returns a new instance of HeaderInjector.
func NewHeaderInjector(next http.RoundTripper, userAgentProvider utils.UserAgentProvider) http.RoundTripper {
	return &HeaderInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
	}
}

// RoundTrip injects the missing headers and forwards the request.
// The request is cloned so the caller's headers stay untouched.
func (t *HeaderInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	userAgent := req.Header.Get(headerUserAgent)
	needsUserAgent := userAgent == "" || utils.IsHeadlessUserAgent(userAgent)
	needsEncoding := req.Header.Get(headerAcceptEncoding) == ""

	if !needsUserAgent && !needsEncoding {
		return t.next.RoundTrip(req)
	}

	clone := req.Clone(req.Context())

	if needsUserAgent {
		clone.Header.Set(headerUserAgent, t.userAgentProvider.GetUserAgent())
	}

	// An explicit Accept-Encoding disables transparent gzip in net/http,
	// so compressed bodies reach DecodeBody exactly as the browser would see them.
	if needsEncoding {
		clone.Header.Set(headerAcceptEncoding, DefaultAcceptEncoding)
	}

	return t.next.RoundTrip(clone)
}
