package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/core"
)

// answerMaxTokens caps the generated answer length.
const answerMaxTokens = 600

// Generator builds the grounded prompt from retrieved passages and calls the
// generation model chosen by the router. Passages are injection-filtered
// before entering the prompt; conversation history is forwarded as-is (it is
// normalized once at ingress, see core.NormalizeMessages).
type Generator struct {
	generator ai.Generator
	logger    *slog.Logger
}

// NewGenerator creates a generator over the AI capability.
func NewGenerator(generator ai.Generator) (*Generator, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	return &Generator{
		generator: generator,
		logger:    slog.Default().With("component", "generator"),
	}, nil
}

// Answer generates a cited answer for the query from the retrieved passages.
func (g *Generator) Answer(ctx context.Context, query string, passages []*core.ScoredCandidate, model string, history []core.Message) (*ai.GenerationResult, error) {
	prompt := buildUserPrompt(query, passages)

	result, err := g.generator.Generate(ctx, ai.GenerationRequest{
		Model:       model,
		System:      answerSystemPrompt,
		History:     history,
		Prompt:      prompt,
		Temperature: 0.0,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		g.logger.Error("answer generation failed", "model", model, "err", err)
		return nil, err
	}
	return result, nil
}

// buildUserPrompt assembles the user message: the query followed by the
// numbered source sections the system prompt's citation rules refer to.
func buildUserPrompt(query string, passages []*core.ScoredCandidate) string {
	var b strings.Builder
	b.WriteString("User Query: ")
	b.WriteString(query)
	b.WriteString("\n\nContextual Documentation: \n[START OF SEARCH RESULTS]\n")
	for i, passage := range passages {
		fmt.Fprintf(&b, "\n--- Source Section %d ---\n", i+1)
		b.WriteString(filterInjectionLines(passage.Chunk.Text))
		b.WriteString("\n")
	}
	b.WriteString("\n[END OF SEARCH RESULTS]\n")
	return b.String()
}
