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


// Package search implements the hybrid retrieval pipeline.
//
// A query runs through six stages:
//
//  1. HyDE expansion (short queries only, dense leg only, own timeout)
//  2. Parallel dense (inner product) and sparse (BM25) retrieval
//  3. Reciprocal Rank Fusion of the two ranked lists
//  4. Deduplication and adaptive similarity thresholding
//  5. Conditional reranking of a fixed-size prefix
//  6. Token-budgeted context assembly
//
// The pipeline is built to degrade, not fail: an unavailable index yields an
// empty leg, a failed embedding or expansion falls back to the raw query
// path, and a failed or missing reranker keeps the fused ordering. The only
// error RetrieveWithMonitor returns is context cancellation.
//
// A RetrievalMonitor can observe every stage; pass nil for none.
package search
