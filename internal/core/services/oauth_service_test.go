package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUsername(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Steve", "steve"},
		{"Cool Gamer-99", "cool_gamer_99"},
		{"first.last", "first_last"},
		{"émilie!", "milie"},
		{"日本語", ""},
		{"a_very_long_discord_display_name_indeed", "a_very_long_discord_display_na"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeUsername(tc.in), tc.in)
	}
}
