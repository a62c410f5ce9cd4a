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

// Package ingestion adds documentation chunks to the corpus.
//
// Ingest validates and persists chunks synchronously, then embeds them on a
// worker pool and writes the vectors back. Embedded chunks are handed to an
// IndexSink so the in-memory retrieval indices grow without a restart. A
// chunk and its vector reach the sink together, so index rows stay aligned
// with the sink's metadata table regardless of how embedding batches
// interleave.
package ingestion
