package http

import (
	"net/http"

	"github.com/oshokin/xolta-token/internal/utils"
)

// NewClient returns the client used to replay requests intercepted from the browser.
// Redirects are returned to the caller instead of being followed: the browser owns navigation.
func NewClient(userAgentProvider utils.UserAgentProvider) *http.Client {
	if userAgentProvider == nil {
		userAgentProvider = utils.NewStaticUserAgentProvider(DefaultUserAgent)
	}

	return &http.Client{
		Transport: NewHeaderInjector(
			NewLogTransport(http.DefaultTransport, 0),
			userAgentProvider,
		),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: DefaultTimeout,
	}
}
