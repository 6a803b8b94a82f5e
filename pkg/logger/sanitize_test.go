package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bob@acme.com", "b**@****.com"},
		{"a@b.io", "a@*.io"},
		{"no-at-sign", "[invalid-email]"},
		{"two@at@signs", "[invalid-email]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizedEmail(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeQueryString(t *testing.T) {
	tests := []struct {
		rawQuery string
		want     bool
	}{
		{"", false},
		{"status=active&limit=10", false},
		{"token=abc123", true},
		{"TOKEN=abc123", true},
		{"code=123456&email=a@b.com", true},
		{"reset=xyz", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeQueryString(tt.rawQuery), "query %q", tt.rawQuery)
	}
}
