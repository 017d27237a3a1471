package auth

import (
	"errors"
	"fmt"
	"time"
)

const (
	// StatusOK is the provider status of an accepted credential check.
	StatusOK = "200"

	// StatusInternalError is the status reported for failures that happen on our side.
	StatusInternalError = "500"
)

// Static error definitions for better error handling.
var (
	// ErrLoginFailed is matched by every *AuthError.
	ErrLoginFailed = errors.New("login failed")
	// ErrLoginTimeout indicates that a login step or the whole attempt ran out of time.
	ErrLoginTimeout = errors.New("login timeout exceeded")
	// ErrProviderRejected indicates that the identity provider refused the credentials.
	ErrProviderRejected = errors.New("identity provider rejected the credentials")
	// ErrMalformedResponse indicates an intercepted response that could not be decoded or lacks required fields.
	ErrMalformedResponse = errors.New("malformed identity provider response")
	// ErrBrowser indicates a failure to launch or drive the browser.
	ErrBrowser = errors.New("browser automation failed")
)

// Credential is the username/password pair used to sign in.
type Credential struct {
	Username string
	Password string
}

// String hides the password.
func (c Credential) String() string {
	return fmt.Sprintf("Credential{Username: %q, Password: [REDACTED]}", c.Username)
}

// GoString hides the password in %#v output too.
func (c Credential) GoString() string {
	return c.String()
}

// Result is the outcome of one login attempt.
// A successful result has Status StatusOK and a non-empty AccessToken.
type Result struct {
	// Status is the provider's status, or StatusInternalError for local failures.
	Status string
	// Message is the provider's message or the local error text.
	Message string
	// ErrorCode is the provider's error code, if any.
	ErrorCode string
	// AccessToken is the bearer token issued on success.
	AccessToken string
	// RefreshToken is the refresh token issued on success, if any.
	RefreshToken string
	// Duration is the wall-clock time of the attempt.
	Duration time.Duration
	// Cause is the classified error of a failed attempt.
	Cause error
}

// IsSuccess reports whether the attempt produced a token.
func (r *Result) IsSuccess() bool {
	return r != nil && r.Status == StatusOK && r.AccessToken != ""
}

// Err returns nil for a successful result and an *AuthError otherwise.
func (r *Result) Err() error {
	if r.IsSuccess() {
		return nil
	}

	if r == nil {
		return &AuthError{
			Status:  StatusInternalError,
			Message: "no login result",
			Cause:   ErrBrowser,
		}
	}

	cause := r.Cause
	if cause == nil {
		cause = ErrProviderRejected
	}

	return &AuthError{
		Status:    r.Status,
		Message:   r.Message,
		ErrorCode: r.ErrorCode,
		Duration:  r.Duration,
		Cause:     cause,
	}
}

// AuthError is returned when a login attempt did not produce a token.
type AuthError struct {
	Status    string
	Message   string
	ErrorCode string
	Duration  time.Duration
	Cause     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login attempt failed after %s: %s", e.Duration.Round(time.Millisecond), e.Message)
}

// Unwrap exposes both ErrLoginFailed and the classified cause.
func (e *AuthError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrLoginFailed}
	}

	return []error{ErrLoginFailed, e.Cause}
}

// failure builds the result of an attempt that failed on our side.
func failure(cause error) *Result {
	return &Result{
		Status:  StatusInternalError,
		Message: cause.Error(),
		Cause:   cause,
	}
}
