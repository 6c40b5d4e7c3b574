package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashIdentifier returns the hex SHA-256 digest of a lower-cased, trimmed
// value. Advertising platforms require personal identifiers to be normalized
// this way before transmission. Empty input hashes to an empty string.
func HashIdentifier(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
