package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMatchesPath tests the interception matching rule.
func TestMatchesPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		pattern  string
		expected bool
	}{
		{
			name:     "credential check",
			url:      "https://login.xolta.com/xoltab2c.onmicrosoft.com/B2C_1_sisu/SelfAsserted?tx=StateProperties=x&p=B2C_1_sisu",
			pattern:  "B2C_1_sisu/SelfAsserted",
			expected: true,
		},
		{
			name:     "token endpoint",
			url:      "https://login.xolta.com/xoltab2c.onmicrosoft.com/b2c_1_sisu/oauth2/v2.0/token",
			pattern:  "b2c_1_sisu/oauth2/v2.0/token",
			expected: true,
		},
		{
			name:     "match is case sensitive",
			url:      "https://login.xolta.com/xoltab2c.onmicrosoft.com/B2C_1_SISU/oauth2/v2.0/token",
			pattern:  "b2c_1_sisu/oauth2/v2.0/token",
			expected: false,
		},
		{
			name:     "unrelated request",
			url:      "https://app.xolta.com/static/js/main.js",
			pattern:  "B2C_1_sisu/SelfAsserted",
			expected: false,
		},
		{
			name:     "empty pattern matches nothing",
			url:      "https://app.xolta.com/",
			pattern:  "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, matchesPath(tt.url, tt.pattern))
		})
	}
}

// TestConstants tests the constants.
func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "200", StatusOK)
	assert.Equal(t, "500", StatusInternalError)
	assert.Equal(t, 8, exchangeBufferSize)
}
