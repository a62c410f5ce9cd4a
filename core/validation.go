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


package core

import (
	"fmt"
	"strings"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - DocID must not be empty
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding step runs)
//   - ChunkID (derived from content when absent)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	if chunk.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocID)
	}

	return nil
}

// NormalizeMessages validates a conversation history and returns it in
// canonical form. Unknown roles are rejected; text is used as-is. This is
// the single ingress point for history, so downstream code never has to
// re-check roles.
func NormalizeMessages(history []Message) ([]Message, error) {
	normalized := make([]Message, 0, len(history))
	for i, msg := range history {
		role := Role(strings.ToLower(strings.TrimSpace(string(msg.Role))))
		switch role {
		case RoleUser, RoleBot:
		case "assistant", "ai":
			// Accepted aliases from older clients.
			role = RoleBot
		default:
			return nil, fmt.Errorf("%w: %w %q at index %d", ErrInvalidMessage, ErrInvalidRole, msg.Role, i)
		}
		if msg.Text == "" {
			continue
		}
		normalized = append(normalized, Message{Role: role, Text: msg.Text})
	}
	return normalized, nil
}

// NormalizeQuery puts a raw user query into canonical form: surrounding
// whitespace trimmed, lowercased, trailing question/exclamation/period
// punctuation stripped. The query cache keys on this form so that
// "What is X?" and "what is x" collide intentionally.
func NormalizeQuery(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	return strings.TrimSpace(strings.TrimRight(query, "?!."))
}
