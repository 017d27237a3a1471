package utils

import (
	"math"
	"mime"
	"os"
	"regexp"
	"strings"
)

const (
	// maskedSecretVisiblePrefix is the number of leading characters kept when masking a secret.
	maskedSecretVisiblePrefix = 6

	// maskedSecretMinLength is the length below which a secret is masked completely.
	maskedSecretMinLength = 16

	// maskedSecretPlaceholder replaces the hidden part of a secret.
	maskedSecretPlaceholder = "***"
)

// textContentTypePatterns is a slice of regular expressions that match content types
// considered to be text-based. This includes "text/*", "application/json", "application/*+json"
// and "application/x-www-form-urlencoded".
//
//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
var textContentTypePatterns = []*regexp.Regexp{
	regexp.MustCompile("^text/.+"),
	regexp.MustCompile("^application/json$"),
	regexp.MustCompile(`^application/[a-z0-9.\-]+\+json$`),
	regexp.MustCompile("^application/x-www-form-urlencoded$"),
}

// SafeUint64ToInt64 converts a uint64 value to an int64 safely,
// ensuring that the value does not exceed the maximum limit of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// IsFileExist checks if a file exists at the specified path.
// It returns true if the file exists and is not a directory, false if the file does not exist,
// and an error if there was an issue accessing the file.
func IsFileExist(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err == nil {
		return !stat.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// IsTextContentType checks if the given content type represents a text-based format.
// It also checks that the charset, if present, is either "utf-8" or "us-ascii".
func IsTextContentType(contentType string) bool {
	parsedType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if !pattern.MatchString(parsedType) {
			continue
		}

		charset := strings.ToLower(params["charset"])

		return charset == "" || charset == "utf-8" || charset == "us-ascii"
	}

	return false
}

// MaskSecret hides most of a secret so it can be shown in logs and reports.
// Short secrets are hidden completely.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) < maskedSecretMinLength {
		return maskedSecretPlaceholder
	}

	return secret[:maskedSecretVisiblePrefix] + maskedSecretPlaceholder
}
