package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for replayed browser requests.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is the User-Agent used when a replayed request carries none.
	// It matches the desktop Chrome build driven by the login automation.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36" //nolint: lll

	// DefaultAcceptEncoding lists every content coding DecodeBody understands.
	DefaultAcceptEncoding = "gzip, deflate, br, zstd"

	// redactedValue replaces secrets in logged dumps.
	redactedValue = "[REDACTED]"
)

// HTTP header names used by the transports.
const (
	headerUserAgent       = "User-Agent"
	headerAcceptEncoding  = "Accept-Encoding"
	headerContentEncoding = "Content-Encoding"
	headerContentType     = "Content-Type"
)
