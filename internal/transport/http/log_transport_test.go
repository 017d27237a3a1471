package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/xolta-token/internal/config"
)

// TestNewLogTransport tests the default log length.
func TestNewLogTransport(t *testing.T) {
	t.Parallel()

	transport, ok := NewLogTransport(http.DefaultTransport, 0).(*LogTransport)
	require.True(t, ok)
	assert.Equal(t, uint64(config.DefaultMaxLogLength), transport.maxLogLength)

	transport, ok = NewLogTransport(http.DefaultTransport, 42).(*LogTransport)
	require.True(t, ok)
	assert.Equal(t, uint64(42), transport.maxLogLength)
}

// TestLogTransport_RoundTrip tests that responses pass through unchanged.
func TestLogTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"200"}`))
	}))
	defer server.Close()

	transport := NewLogTransport(http.DefaultTransport, 0)

	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("password=secret")) //nolint:noctx,lll // Test code.
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"200"}`, string(body))
}

// TestLogTransport_RoundTrip_NilRequest tests that a nil request is rejected.
func TestLogTransport_RoundTrip_NilRequest(t *testing.T) {
	t.Parallel()

	resp, err := NewLogTransport(http.DefaultTransport, 0).RoundTrip(nil) //nolint:bodyclose // Body is empty on error.
	require.ErrorIs(t, err, ErrNilRequest)
	assert.Nil(t, resp)
}

// TestRedactSecrets tests that secrets never reach the debug log.
func TestRedactSecrets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		expected   string
		mustNotSee string
	}{
		{
			name:       "cookie header",
			input:      "GET / HTTP/1.1\r\nCookie: x-ms-cpim-sso=abc\r\nHost: x\r\n",
			expected:   "GET / HTTP/1.1\r\nCookie: [REDACTED]\r\nHost: x\r\n",
			mustNotSee: "abc",
		},
		{
			name:       "authorization header",
			input:      "Authorization: Bearer eyJ0eXAi\r\n",
			expected:   "Authorization: [REDACTED]\r\n",
			mustNotSee: "eyJ0eXAi",
		},
		{
			name:       "form password",
			input:      "request_type=RESPONSE&email=a%40b.c&password=hunter2",
			expected:   "request_type=RESPONSE&email=a%40b.c&password=[REDACTED]",
			mustNotSee: "hunter2",
		},
		{
			name:       "form code at line start",
			input:      "code=xyz&grant_type=authorization_code",
			expected:   "code=[REDACTED]&grant_type=authorization_code",
			mustNotSee: "xyz",
		},
		{
			name:       "json tokens",
			input:      `{"access_token":"at-1","token_type":"Bearer","refresh_token" : "rt-1"}`,
			expected:   `{"access_token":"[REDACTED]","token_type":"Bearer","refresh_token" : "[REDACTED]"}`,
			mustNotSee: "at-1",
		},
		{
			name:     "nothing to redact",
			input:    `{"status":"200"}`,
			expected: `{"status":"200"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := string(redactSecrets([]byte(tt.input)))
			assert.Equal(t, tt.expected, result)

			if tt.mustNotSee != "" {
				assert.NotContains(t, result, tt.mustNotSee)
			}
		})
	}
}

// TestLogTransport_Truncate tests the truncation of long dumps.
func TestLogTransport_Truncate(t *testing.T) {
	t.Parallel()

	transport := &LogTransport{maxLogLength: 4}

	assert.Equal(t, "abc", transport.truncate([]byte("abc")))
	assert.Equal(t, "abcd... [truncated]", transport.truncate([]byte("abcdef")))
}
