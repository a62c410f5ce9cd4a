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
	"errors"
	"log/slog"

	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
// The model is chosen per request by the complexity router, so the client is
// constructed without a bound model and the request names one explicitly.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken("none"),
		openai.WithModel(config.SimpleModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate produces a completion for the request using the named model.
func (g *Generator) Generate(ctx context.Context, req ai.GenerationRequest) (*ai.GenerationResult, error) {
	if req.Model == "" {
		return nil, errors.New("generation request: model is required")
	}

	content := make([]llms.MessageContent, 0, len(req.History)+2)
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	for _, msg := range req.History {
		role := llms.ChatMessageTypeHuman
		if msg.Role == core.RoleBot {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Text)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	opts := []llms.CallOption{
		llms.WithModel(req.Model),
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	response, err := g.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		g.logger.Error("generation call failed", "model", req.Model, "err", err)
		return nil, err
	}
	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from generation model", "model", req.Model)
		return &ai.GenerationResult{}, nil
	}

	choice := response.Choices[0]
	return &ai.GenerationResult{
		Text:  choice.Content,
		Usage: usageFromGenerationInfo(choice.GenerationInfo),
	}, nil
}

// usageFromGenerationInfo pulls token counts out of the provider-specific
// generation info map. Missing or differently-typed entries count as zero.
func usageFromGenerationInfo(info map[string]any) core.Usage {
	var usage core.Usage
	if n, ok := info["PromptTokens"].(int); ok {
		usage.PromptTokens = n
	}
	if n, ok := info["CompletionTokens"].(int); ok {
		usage.CompletionTokens = n
	}
	return usage
}
