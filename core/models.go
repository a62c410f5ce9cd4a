package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is an immutable unit of the document corpus. Chunks are created once
// at ingestion time and never mutated afterwards; the dense and sparse
// indices address them by their position in the metadata table.
type Chunk struct {
	Position     uint64 // Storage sequence number; row index in the metadata table
	DocID        string
	ChunkID      string
	SectionTitle string
	Text         string
	Vector       []float32 // Unit-normalized embedding (populated at ingestion)
	InsertedAt   time.Time
}

// Key returns the deduplication key for the chunk: the ChunkID when present,
// otherwise the first 80 characters of the text.
func (c *Chunk) Key() string {
	if c.ChunkID != "" {
		return c.ChunkID
	}
	text := c.Text
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}

// ScoredCandidate is a per-request view of a chunk carrying retrieval scores.
// Candidates live for a single request and are discarded after the response
// is assembled.
type ScoredCandidate struct {
	Chunk      *Chunk
	Position   int     // Position in the metadata table
	Similarity float64 // Dense inner-product score; 0 when absent from dense results
	RRFScore   float64 // Fused reciprocal-rank score
	CEScore    float64 // Cross-encoder rerank score (populated only when reranked)
	Reranked   bool
}

// RetrievalResult is the ordered output of the retrieval pipeline.
// Passages are in final presentation order and contain no duplicate chunks.
type RetrievalResult struct {
	Passages      []*ScoredCandidate
	AvgSimilarity float64
}

// Classification labels a query's difficulty for model routing.
type Classification string

const (
	// ClassificationSimple routes to the smaller, faster generation model.
	ClassificationSimple Classification = "simple"
	// ClassificationComplex routes to the larger, slower generation model.
	ClassificationComplex Classification = "complex"
)

// RouteDecision is the outcome of complexity routing for a query.
// It is a pure function of the query text; nothing about it is persisted.
type RouteDecision struct {
	Classification Classification
	Model          string
	Score          int
}

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser is a message written by the end user.
	RoleUser Role = "user"
	// RoleBot is a message written by the assistant.
	RoleBot Role = "bot"
)

// Message is a normalized conversation history entry. History is validated
// once at ingress; downstream code can rely on Role being one of the
// defined constants.
type Message struct {
	Role Role
	Text string
}

// Usage records token consumption reported by the generation model.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response is the full answer payload for a query. This is the value stored
// in the query result cache.
type Response struct {
	Answer        string
	Passages      []*ScoredCandidate
	Route         RouteDecision
	AvgSimilarity float64
	Confidence    float64
	Flags         []string // Quality flags raised by answer evaluation
	Usage         Usage
	Cached        bool
}

// QueryLogEntry records a single answered request for offline analysis.
type QueryLogEntry struct {
	Id             ID
	Query          string
	Classification Classification
	Model          string
	AvgSimilarity  float64
	Confidence     float64
	LatencyMillis  int64
	Cached         bool
	Timestamp      time.Time
}

// Checkpoint tracks progress of a long-running maintenance job so it can
// resume after interruption.
type Checkpoint struct {
	JobType      string
	LastPosition uint64
	UpdatedAt    time.Time
}
