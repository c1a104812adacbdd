package domain

import (
	"strings"

	"github.com/gosimple/slug"
)

const maxAssetNameLen = 64

// SanitizeAssetName derives a provider-safe identifier from a free-form
// name. The result contains only [A-Za-z0-9_-] and is length-capped, so it
// can never smuggle header or path syntax into a multipart upload.
func SanitizeAssetName(name string) string {
	cleaned := slug.Make(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() >= maxAssetNameLen {
			break
		}
	}

	sanitized := strings.Trim(b.String(), "-_")
	if sanitized == "" {
		return "asset"
	}
	return sanitized
}
