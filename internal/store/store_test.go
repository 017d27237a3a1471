package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCachedToken_IsExpired tests the strict expiry boundary.
func TestCachedToken_IsExpired(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := CachedToken{AccessToken: "T1", ExpiresAt: expiresAt}

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{
			name:     "one second before",
			now:      expiresAt.Add(-time.Second),
			expected: false,
		},
		{
			name:     "exactly at expiry",
			now:      expiresAt,
			expected: true,
		},
		{
			name:     "one second after",
			now:      expiresAt.Add(time.Second),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, token.IsExpired(tt.now))
		})
	}
}

// TestCachedToken_MarshalJSON tests the on-disk record layout.
func TestCachedToken_MarshalJSON(t *testing.T) {
	t.Parallel()

	token := CachedToken{
		AccessToken: "T1",
		ExpiresAt:   time.Unix(1767225600, 500*int64(time.Millisecond)),
	}

	data, err := json.Marshal(token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"T1","expires_at":1767225600.5}`, string(data))
}

// TestCachedToken_UnmarshalJSON tests decoding of records, including ones written by other tools.
func TestCachedToken_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         string
		expected      CachedToken
		expectedError error
	}{
		{
			name:  "fractional seconds with spaced separators",
			input: `{"access_token": "T1", "expires_at": 1767225600.25}`,
			expected: CachedToken{
				AccessToken: "T1",
				ExpiresAt:   time.Unix(1767225600, 250*int64(time.Millisecond)),
			},
		},
		{
			name:  "integer seconds",
			input: `{"access_token":"T2","expires_at":1767225600}`,
			expected: CachedToken{
				AccessToken: "T2",
				ExpiresAt:   time.Unix(1767225600, 0),
			},
		},
		{
			name:          "missing token",
			input:         `{"expires_at":1767225600}`,
			expectedError: ErrCorruptRecord,
		},
		{
			name:          "missing expiry",
			input:         `{"access_token":"T1"}`,
			expectedError: ErrCorruptRecord,
		},
		{
			name:          "not json",
			input:         `access_token=T1`,
			expectedError: ErrCorruptRecord,
		},
		{
			name:          "truncated",
			input:         `{"access_token": "T1", "expires_at": 17`,
			expectedError: ErrCorruptRecord,
		},
		{
			name:          "empty",
			input:         ``,
			expectedError: ErrCorruptRecord,
		},
		{
			name:          "wrong type",
			input:         `{"access_token":"T1","expires_at":"tomorrow"}`,
			expectedError: ErrCorruptRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var token CachedToken

			err := token.UnmarshalJSON([]byte(tt.input))
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected.AccessToken, token.AccessToken)
			assert.True(t, tt.expected.ExpiresAt.Equal(token.ExpiresAt),
				"expected %s, got %s", tt.expected.ExpiresAt, token.ExpiresAt)
		})
	}
}

// TestSentinelErrors tests that the sentinel errors are distinct.
func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	require.NotErrorIs(t, ErrNotFound, ErrStorage)
	require.NotErrorIs(t, ErrCorruptRecord, ErrStorage)
	assert.Equal(t, "token record not found", ErrNotFound.Error())
	assert.Equal(t, "token storage failure", ErrStorage.Error())
}
