package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

//go:generate $MOCKGEN -source=store.go -destination=mocks/store_mock.go

// Store is the durable storage of cached tokens, keyed by credential hash.
type Store interface {
	// Load returns the record stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) (*CachedToken, error)
	// Save replaces the record stored under key.
	Save(ctx context.Context, key string, token CachedToken) error
	// Delete removes the record stored under key. Deleting a missing record is not an error.
	Delete(ctx context.Context, key string) error
}

// CachedToken is a bearer token together with the moment it stops being reused.
type CachedToken struct {
	// AccessToken is the bearer token.
	AccessToken string
	// ExpiresAt is the absolute expiry time assigned when the token was acquired.
	ExpiresAt time.Time
}

// record is the on-disk representation of CachedToken.
type record struct {
	AccessToken string   `json:"access_token"`
	ExpiresAt   *float64 `json:"expires_at"`
}

// Static error definitions for better error handling.
var (
	// ErrNotFound indicates that no record is stored under the key.
	ErrNotFound = errors.New("token record not found")
	// ErrStorage indicates that a record could not be read, decoded or written.
	ErrStorage = errors.New("token storage failure")
	// ErrCorruptRecord indicates that a stored record is not a valid token record.
	ErrCorruptRecord = errors.New("corrupt token record")
)

// IsExpired reports whether the token must no longer be used at now.
// A token is valid strictly before its expiry time.
func (t CachedToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// MarshalJSON encodes the token with its expiry as fractional epoch seconds.
func (t CachedToken) MarshalJSON() ([]byte, error) {
	expiresAt := float64(t.ExpiresAt.UnixNano()) / float64(time.Second)

	return json.Marshal(record{
		AccessToken: t.AccessToken,
		ExpiresAt:   &expiresAt,
	})
}

// UnmarshalJSON decodes a record written by MarshalJSON.
// Both fields are required.
func (t *CachedToken) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	if r.AccessToken == "" {
		return fmt.Errorf("%w: access_token is missing", ErrCorruptRecord)
	}

	if r.ExpiresAt == nil || math.IsNaN(*r.ExpiresAt) || math.IsInf(*r.ExpiresAt, 0) {
		return fmt.Errorf("%w: expires_at is missing", ErrCorruptRecord)
	}

	seconds, fraction := math.Modf(*r.ExpiresAt)

	t.AccessToken = r.AccessToken
	t.ExpiresAt = time.Unix(int64(seconds), int64(math.Round(fraction*float64(time.Second))))

	return nil
}
