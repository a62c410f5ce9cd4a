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

// Package reindex re-embeds the persisted chunk corpus, typically after an
// embedding model upgrade.
//
// The job scans chunks in position order, embeds them in batches with
// retry and exponential backoff, and writes the refreshed vectors back.
// Progress is checkpointed after every batch, so an interrupted run resumes
// from the last completed batch instead of starting over. The in-memory
// indices are rebuilt from storage on next startup; this package only
// refreshes what is persisted.
package reindex
