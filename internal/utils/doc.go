// Package utils provides small helpers shared across the application:
// safe numeric conversions, file checks, content type detection and secret masking.
package utils
