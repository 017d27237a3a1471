package tokencache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/oshokin/xolta-token/internal/service/auth"
)

// CacheKey identifies the cached token of one credential.
// It is the lowercase hex SHA-256 of the credential's canonical serialization.
type CacheKey string

// NewCacheKey derives the cache key of credential.
//
// The serialization is byte-for-byte the one of the earlier Python tool
// (json.dumps with default separators and ASCII escaping), so its cache files stay valid.
func NewCacheKey(credential auth.Credential) CacheKey {
	var b strings.Builder

	b.WriteString(`{"username": `)
	writeASCIIJSONString(&b, credential.Username)
	b.WriteString(`, "password": `)
	writeASCIIJSONString(&b, credential.Password)
	b.WriteString(`}`)

	sum := sha256.Sum256([]byte(b.String()))

	return CacheKey(hex.EncodeToString(sum[:]))
}

// String returns the key itself.
func (k CacheKey) String() string {
	return string(k)
}

// writeASCIIJSONString writes s as a JSON string containing printable ASCII only.
// Everything outside the printable range is written as \uXXXX, with surrogate pairs above U+FFFF.
func writeASCIIJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				b.WriteRune(r)
			case r > 0xffff:
				high, low := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, high, low)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}

	b.WriteByte('"')
}
