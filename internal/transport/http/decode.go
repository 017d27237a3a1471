package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// MaxDecodedBodySize caps the size of a decoded body.
const MaxDecodedBodySize = 16 * 1024 * 1024 // 16 MB

// Static error definitions for better error handling.
var (
	// ErrUnsupportedEncoding indicates a content coding the decoder does not know.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
	// ErrBodyTooLarge indicates that a decoded body exceeds MaxDecodedBodySize.
	ErrBodyTooLarge = errors.New("decoded body is too large")
)

// DecodeBody reverses the content codings listed in a Content-Encoding header value.
// Codings are applied by the server in listed order, so they are removed from last to first.
// An empty value or "identity" returns the body unchanged.
func DecodeBody(body []byte, contentEncoding string) ([]byte, error) {
	codings := strings.Split(contentEncoding, ",")

	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))

		decoded, err := decodeOnce(body, coding)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %q body: %w", coding, err)
		}

		body = decoded
	}

	return body, nil
}

func decodeOnce(body []byte, coding string) ([]byte, error) {
	switch coding {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		defer reader.Close() //nolint:errcheck // Closing an in-memory reader cannot fail meaningfully.

		return readLimited(reader)
	case "deflate":
		return decodeDeflate(body)
	case "br":
		return readLimited(brotli.NewReader(bytes.NewReader(body)))
	case "zstd":
		decoder, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		defer decoder.Close()

		return readLimited(decoder)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, coding)
	}
}

// decodeDeflate accepts both zlib-wrapped and raw deflate streams: servers send either under "deflate".
func decodeDeflate(body []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(body))
	if err == nil {
		defer reader.Close() //nolint:errcheck // Closing an in-memory reader cannot fail meaningfully.

		return readLimited(reader)
	}

	if !errors.Is(err, zlib.ErrHeader) {
		return nil, err
	}

	raw := flate.NewReader(bytes.NewReader(body))

	defer raw.Close() //nolint:errcheck // Closing an in-memory reader cannot fail meaningfully.

	return readLimited(raw)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDecodedBodySize+1))
	if err != nil {
		return nil, err
	}

	if len(data) > MaxDecodedBodySize {
		return nil, ErrBodyTooLarge
	}

	return data, nil
}
