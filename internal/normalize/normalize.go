// file: internal/normalize/normalize.go
// version: 1.0.0
// guid: 3c9d1e5f-7a2b-4c8d-9e0f-1a2b3c4d5e6f

package normalize

import "strings"

// Normalize canonicalizes free text into the comparable form used across the
// catalog: lowercase, letters and spaces only, single spaces, trimmed.
// It never fails; malformed or empty input yields an empty string.
func Normalize(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		// Everything else, whitespace included, becomes at most one space.
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
