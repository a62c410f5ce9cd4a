package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/answerit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryExpander implements ai.QueryExpander using the fast generation model.
// It produces a hypothetical documentation paragraph for the query (HyDE) so
// that short queries embed closer to the passages that answer them.
type QueryExpander struct {
	client llms.Model
	logger *slog.Logger
}

// newQueryExpander is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryExpander(config *ai.Config) (*QueryExpander, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Expansion always runs on the simple model; it is a recall aid, not an
	// answer, so the fast model is the right latency tradeoff.
	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken("none"),
		openai.WithModel(config.SimpleModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryExpander{
		client: client,
		logger: slog.Default().With("component", "openai-expander"),
	}, nil
}

// NewQueryExpander creates a new query expander using the provided configuration.
//
// Returns ai.QueryExpander interface to enforce abstraction.
func NewQueryExpander(config *ai.Config) (ai.QueryExpander, error) {
	return newQueryExpander(config)
}

// Expand returns the query followed by a hypothetical passage answering it.
// The original query is kept in front so exact terms still match.
func (e *QueryExpander) Expand(ctx context.Context, query string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(hydeSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	response, err := e.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.3),
		llms.WithMaxTokens(150))
	if err != nil {
		e.logger.Warn("query expansion failed", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return query, nil
	}

	expansion := strings.TrimSpace(response.Choices[0].Content)
	if expansion == "" {
		return query, nil
	}

	e.logger.Debug("expanded query", "query", query, "expansion_length", len(expansion))
	return query + " " + expansion, nil
}
