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


// Package ai provides abstractions for the AI services used in Answerit.
//
// This package defines interfaces for text embedding, pairwise relevance
// scoring (reranking), HyDE query expansion, and answer generation. It
// follows the dependency inversion principle, allowing the retrieval core
// and business logic to depend on abstractions rather than concrete
// implementations.
//
// # Design Principles
//
// The package is designed around four capability interfaces:
//
//   - Embedder: Generates unit-normalized vector embeddings from text
//   - Reranker: Scores (query, passage) pairs for fine-grained relevance
//   - QueryExpander: Expands short queries into hypothetical answers (HyDE)
//   - Generator: Produces answers with a router-selected model
//
// AIProvider aggregates the four for convenient initialization. Reranker is
// the only optional capability: AIProvider.Reranker returns nil when no
// rerank model is configured, and the retrieval pipeline degrades to its
// fused ordering.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockReranker,
// etc.) return CONCRETE types to enable test assertions and behavior
// injection via the mock's public fields and methods (CallCount, the
// XxxFunc fields, Reset).
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "How do refunds work?")
package ai
