package utils

import "strings"

// NormalizePhone strips every non-digit character from a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPhone reports whether a normalized number looks like a Turkish
// mobile number: either with the country code (90...) or the bare local
// mobile prefix (5...).
func IsValidPhone(normalized string) bool {
	if normalized == "" {
		return false
	}
	return strings.HasPrefix(normalized, "90") || strings.HasPrefix(normalized, "5")
}

// WithCountryCode ensures the number carries the +90 prefix expected by the
// messaging vendor.
func WithCountryCode(normalized string) string {
	if strings.HasPrefix(normalized, "90") {
		return "+" + normalized
	}
	return "+90" + normalized
}
