package mock

import (
	"context"
	"strings"

	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/core"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default canned-answer behavior.
	GenerateFunc func(ctx context.Context, req ai.GenerationRequest) (*ai.GenerationResult, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default canned answers.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a deterministic answer citing the first source section.
// Token usage is approximated from prompt and answer lengths so tests can
// assert it is populated without depending on a real tokenizer.
func (m *MockGenerator) Generate(ctx context.Context, req ai.GenerationRequest) (*ai.GenerationResult, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	answer := "Based on the documentation, here is what I found [1]."
	return &ai.GenerationResult{
		Text: answer,
		Usage: core.Usage{
			PromptTokens:     len(strings.Fields(req.System)) + len(strings.Fields(req.Prompt)),
			CompletionTokens: len(strings.Fields(answer)),
		},
	}, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
}
