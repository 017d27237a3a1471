package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/xolta-token/internal/utils"
	mock_utils "github.com/oshokin/xolta-token/internal/utils/mocks"
)

// TestNewHeaderInjector tests the NewHeaderInjector function.
func TestNewHeaderInjector(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
	injector := NewHeaderInjector(http.DefaultTransport, mockProvider)

	assert.NotNil(t, injector)
	assert.Implements(t, (*http.RoundTripper)(nil), injector)
}

// TestHeaderInjector_RoundTrip tests which headers are injected.
func TestHeaderInjector_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		userAgent          string
		acceptEncoding     string
		providerCalls      int
		wantUserAgent      string
		wantAcceptEncoding string
	}{
		{
			name:               "both headers missing",
			providerCalls:      1,
			wantUserAgent:      "TestAgent/1.0",
			wantAcceptEncoding: DefaultAcceptEncoding,
		},
		{
			name:               "browser headers are kept",
			userAgent:          "Chrome/131",
			acceptEncoding:     "gzip, deflate, br, zstd",
			providerCalls:      0,
			wantUserAgent:      "Chrome/131",
			wantAcceptEncoding: "gzip, deflate, br, zstd",
		},
		{
			name:               "only encoding missing",
			userAgent:          "Chrome/131",
			providerCalls:      0,
			wantUserAgent:      "Chrome/131",
			wantAcceptEncoding: DefaultAcceptEncoding,
		},
		{
			name:               "headless user agent is replaced",
			userAgent:          "Mozilla/5.0 HeadlessChrome/131.0.0.0 Safari/537.36",
			acceptEncoding:     "gzip",
			providerCalls:      1,
			wantUserAgent:      "TestAgent/1.0",
			wantAcceptEncoding: "gzip",
		},
		{
			name:               "only user agent missing",
			acceptEncoding:     "identity",
			providerCalls:      1,
			wantUserAgent:      "TestAgent/1.0",
			wantAcceptEncoding: "identity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)

			mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
			mockProvider.EXPECT().GetUserAgent().Return("TestAgent/1.0").Times(tt.providerCalls)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantUserAgent, r.Header.Get("User-Agent"))
				assert.Equal(t, tt.wantAcceptEncoding, r.Header.Get("Accept-Encoding"))
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			injector := NewHeaderInjector(http.DefaultTransport, mockProvider)

			req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // Test code, context not needed.
			require.NoError(t, err)

			if tt.userAgent != "" {
				req.Header.Set("User-Agent", tt.userAgent)
			}

			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}

			resp, err := injector.RoundTrip(req)
			require.NoError(t, err)

			defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

			assert.Equal(t, http.StatusOK, resp.StatusCode)

			// The caller's request is never mutated.
			assert.Equal(t, tt.userAgent, req.Header.Get("User-Agent"))
		})
	}
}

// TestHeaderInjector_RoundTrip_NilRequest tests that a nil request is rejected.
func TestHeaderInjector_RoundTrip_NilRequest(t *testing.T) {
	t.Parallel()

	injector := NewHeaderInjector(http.DefaultTransport, utils.NewStaticUserAgentProvider("x"))

	resp, err := injector.RoundTrip(nil) //nolint:bodyclose // Body is empty on error.
	require.ErrorIs(t, err, ErrNilRequest)
	assert.Nil(t, resp)
}

// TestHeaderInjector_RoundTrip_ErrorHandling tests error handling in RoundTrip.
func TestHeaderInjector_RoundTrip_ErrorHandling(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
	mockProvider.EXPECT().GetUserAgent().Return("TestAgent/1.0").AnyTimes()

	injector := NewHeaderInjector(http.DefaultTransport, mockProvider)

	req, err := http.NewRequest(http.MethodGet, "http://[::1]:0", nil) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)

	resp, err := injector.RoundTrip(req) //nolint:bodyclose // Body is empty on error.
	require.Error(t, err)
	assert.Nil(t, resp)
}
