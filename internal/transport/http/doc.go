// Package http provides the HTTP plumbing used to replay intercepted browser requests:
// a client with header injection and secret-redacting debug logging,
// and decoding of compressed response bodies.
package http
