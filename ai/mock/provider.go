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


package mock

import "github.com/poiesic/answerit/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder, reranker, expander and generator instances.
type MockProvider struct {
	embedder  *MockEmbedder
	reranker  *MockReranker
	expander  *MockQueryExpander
	generator *MockGenerator

	// rerankerDisabled makes Reranker() return nil, simulating an
	// unavailable rerank model.
	rerankerDisabled bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder() and friends to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		reranker:  NewMockReranker(),
		expander:  NewMockQueryExpander(),
		generator: NewMockGenerator(),
	}
}

// NewMockProviderWithoutReranker creates a mock provider whose Reranker()
// returns nil, for testing graceful degradation of the retrieval pipeline.
func NewMockProviderWithoutReranker() ai.AIProvider {
	return &MockProvider{
		embedder:         NewMockEmbedder(),
		reranker:         NewMockReranker(),
		expander:         NewMockQueryExpander(),
		generator:        NewMockGenerator(),
		rerankerDisabled: true,
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service. A nil reranker
// is allowed and makes Reranker() return nil.
func NewMockProviderWithServices(embedder *MockEmbedder, reranker *MockReranker, expander *MockQueryExpander, generator *MockGenerator) ai.AIProvider {
	return &MockProvider{
		embedder:         embedder,
		reranker:         reranker,
		expander:         expander,
		generator:        generator,
		rerankerDisabled: reranker == nil,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Reranker returns the mock reranker, or nil when disabled.
func (p *MockProvider) Reranker() ai.Reranker {
	if p.rerankerDisabled {
		return nil
	}
	return p.reranker
}

// QueryExpander returns the mock query expander.
func (p *MockProvider) QueryExpander() ai.QueryExpander {
	return p.expander
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockReranker returns the underlying mock reranker for test assertions.
// It returns the instance even when the provider reports reranking disabled.
func (p *MockProvider) GetMockReranker() *MockReranker {
	return p.reranker
}

// GetMockExpander returns the underlying mock expander for test assertions.
func (p *MockProvider) GetMockExpander() *MockQueryExpander {
	return p.expander
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}
