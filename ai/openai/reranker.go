// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/answerit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reranker implements ai.Reranker by asking a chat model to grade the
// relevance of a passage to a query. This is the most expensive call in the
// retrieval path; callers bound how many pairs they submit.
type Reranker struct {
	client llms.Model
	logger *slog.Logger
}

// relevance is the JSON payload the rerank model is instructed to return.
type relevance struct {
	Score float64 `json:"score"`
}

// newReranker is an internal constructor that returns the concrete type.
// Returns (nil, nil) when no rerank model is configured; the caller treats a
// nil reranker as "capability unavailable".
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.RerankModel == "" {
		return nil, nil
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken("none"),
		openai.WithModel(config.RerankModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reranker{
		client: client,
		logger: slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new reranker using the provided configuration.
// Returns a nil ai.Reranker when config.RerankModel is empty.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	r, err := newReranker(config)
	if err != nil || r == nil {
		return nil, err
	}
	return r, nil
}

// Score grades the passage's relevance to the query in [0, 1].
func (r *Reranker) Score(ctx context.Context, query, passage string) (float64, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(rerankSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart("Query: " + query + "\n\nPassage: " + passage)},
		},
	}

	response, err := r.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithJSONMode(),
		llms.WithMaxTokens(32))
	if err != nil {
		r.logger.Warn("rerank scoring call failed", "err", err)
		return 0, err
	}
	if len(response.Choices) < 1 {
		r.logger.Debug("no choices returned from rerank model")
		return 0, nil
	}

	// Strip markdown code fences if present
	text := strings.TrimSpace(response.Choices[0].Content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var rel relevance
	if err := json.Unmarshal([]byte(text), &rel); err != nil {
		r.logger.Warn("error parsing rerank response", "response", text, "err", err)
		return 0, err
	}

	if rel.Score < 0 {
		rel.Score = 0
	}
	if rel.Score > 1 {
		rel.Score = 1
	}
	return rel.Score, nil
}
