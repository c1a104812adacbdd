package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeAssetName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"France 1930 50c", "france-1930-50c"},
		{"  Penny Black  ", "penny-black"},
		{`evil"; filename="x`, "evil-filename-x"},
		{"", "asset"},
		{"!!!", "asset"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeAssetName(tc.in), "input %q", tc.in)
	}
}

func TestSanitizeAssetName_CapsLength(t *testing.T) {
	got := SanitizeAssetName(strings.Repeat("a", 200))
	assert.LessOrEqual(t, len(got), 64)
	assert.NotEmpty(t, got)
}

func TestSanitizeAssetName_OnlySafeRunes(t *testing.T) {
	got := SanitizeAssetName("Österreich 1908 — 10 Heller")
	for _, r := range got {
		safe := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
		assert.True(t, safe, "unsafe rune %q in %q", r, got)
	}
}
