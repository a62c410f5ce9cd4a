package index

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text, strips everything outside [a-z0-9] and
// whitespace, and splits on whitespace. The sparse index uses this for both
// corpus builds and queries; the two sides must never diverge or BM25 scores
// become meaningless.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Fields(b.String())
}
