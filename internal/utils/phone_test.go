package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+90 555 123 45 67", "905551234567"},
		{"0555-123-45-67", "05551234567"},
		{"5551234567", "5551234567"},
		{"(555) 123 4567", "5551234567"},
		{"abc", ""},
	}

	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"905551234567", true},
		{"5551234567", true},
		{"15551234567", false},
		{"05551234567", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsValidPhone(tc.in); got != tc.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestWithCountryCode(t *testing.T) {
	if got := WithCountryCode("5551234567"); got != "+905551234567" {
		t.Errorf("WithCountryCode without prefix = %q", got)
	}
	if got := WithCountryCode("905551234567"); got != "+905551234567" {
		t.Errorf("WithCountryCode with prefix = %q", got)
	}
}

func TestHashIdentifier(t *testing.T) {
	const want = "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b"
	if got := HashIdentifier("test@example.com"); got != want {
		t.Errorf("HashIdentifier = %q, want %q", got, want)
	}

	// Normalization: lower-case and trim before hashing.
	if HashIdentifier("  Test@Example.COM ") != HashIdentifier("test@example.com") {
		t.Error("HashIdentifier should normalize case and whitespace")
	}

	if got := HashIdentifier("  "); got != "" {
		t.Errorf("HashIdentifier of blank input = %q, want empty", got)
	}
}
