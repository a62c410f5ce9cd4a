package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "lowercases and splits",
			input:    "Reset Your Password",
			expected: []string{"reset", "your", "password"},
		},
		{
			name:     "strips punctuation",
			input:    "What's the refund-policy, exactly?",
			expected: []string{"whats", "the", "refundpolicy", "exactly"},
		},
		{
			name:     "keeps digits",
			input:    "error 502 on api v2",
			expected: []string{"error", "502", "on", "api", "v2"},
		},
		{
			name:     "collapses whitespace",
			input:    "  spaced \t out\n words ",
			expected: []string{"spaced", "out", "words"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
		{
			name:     "only punctuation",
			input:    "?!...---",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

// Build-side and query-side tokenization must be the same function; this
// guards against someone "improving" one side only.
func TestTokenizeSymmetry(t *testing.T) {
	text := "The Export FAILED with error #42!"
	assert.Equal(t, Tokenize(text), Tokenize(text))
	assert.Equal(t, []string{"the", "export", "failed", "with", "error", "42"}, Tokenize(text))
}
