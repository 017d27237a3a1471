package http

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"regexp"
	"time"

	"github.com/oshokin/xolta-token/internal/config"
	"github.com/oshokin/xolta-token/internal/logger"
	"github.com/oshokin/xolta-token/internal/utils"
)

// LogTransport is a http.RoundTripper that logs requests and responses at debug level.
// Credentials, cookies and tokens are redacted from the dumps.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// maxLogLength is the maximum length of logged request/response data.
	maxLogLength uint64
}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// secretPatterns match secrets in headers, form bodies and JSON bodies.
//
//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^((?:Authorization|Cookie|Set-Cookie):\s*)[^\r\n]+`),
	regexp.MustCompile(`(?im)((?:^|[&?])(?:password|code|code_verifier|refresh_token|client_secret)=)[^&\s]*`),
	regexp.MustCompile(`(?i)("(?:password|access_token|refresh_token|id_token)"\s*:\s*")[^"]*`),
}

// NewLogTransport creates and returns a new instance of LogTransport.
// If maxLogLength is 0, it defaults to config.DefaultMaxLogLength.
func NewLogTransport(next http.RoundTripper, maxLogLength uint64) http.RoundTripper {
	if maxLogLength == 0 {
		maxLogLength = config.DefaultMaxLogLength
	}

	return &LogTransport{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	// Skip logging if the logger is not at debug level.
	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()

	requestDump := t.dumpRequest(req)

	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(startTime)

	if err != nil {
		logger.Debugf(ctx, "Request failed: %s %s | Error: %v", req.Method, req.URL.Redacted(), err)

		return nil, err
	}

	responseDump := t.dumpResponse(resp)

	logger.Debugf(ctx, "%s %s [%d] %s\nRequest: %s\nResponse: %s",
		req.Method, req.URL.Path, resp.StatusCode, duration, requestDump, responseDump)

	return resp, nil
}

func (t *LogTransport) dumpRequest(req *http.Request) string {
	dump, err := httputil.DumpRequest(req, true)
	if err != nil {
		return err.Error()
	}

	return t.truncate(redactSecrets(dump))
}

func (t *LogTransport) dumpResponse(resp *http.Response) string {
	// Compressed or binary bodies are unreadable in a dump.
	withBody := resp.Header.Get(headerContentEncoding) == "" &&
		utils.IsTextContentType(resp.Header.Get(headerContentType))

	dump, err := httputil.DumpResponse(resp, withBody)
	if err != nil {
		return err.Error()
	}

	return t.truncate(redactSecrets(dump))
}

func (t *LogTransport) truncate(data []byte) string {
	if uint64(len(data)) > t.maxLogLength {
		return string(data[:t.maxLogLength]) + "... [truncated]"
	}

	return string(data)
}

func redactSecrets(data []byte) []byte {
	for _, pattern := range secretPatterns {
		data = pattern.ReplaceAll(data, []byte("${1}"+redactedValue))
	}

	return data
}
