package storage

import (
	"context"

	"github.com/poiesic/answerit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing the persisted chunk corpus.
// Chunks are append-only: positions are assigned once from a sequence and the
// in-memory indices are rebuilt from a position-ordered scan at startup.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// Assigns each chunk the next position from the sequence and sets
	// InsertedAt. Returns the chunks with positions and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks overwrites existing chunks in place, keyed by Position.
	// Used by re-embedding jobs to write back refreshed vectors.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by position.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, position uint64) (*core.Chunk, error)

	// GetAllChunks retrieves every chunk ordered by ascending position.
	// Index builders rely on this ordering to keep dense rows aligned with
	// the metadata table.
	GetAllChunks(ctx context.Context) ([]*core.Chunk, error)

	// ForEachChunk scans chunks with position > after, in ascending position
	// order, invoking fn for each. A non-nil error from fn stops the scan.
	// Maintenance jobs use the after cursor to resume from a checkpoint.
	ForEachChunk(ctx context.Context, after uint64, fn func(chunk *core.Chunk) error) error

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}

// QueryLogRepository provides operations for the append-only query log.
type QueryLogRepository interface {
	Repository
	// AppendEntries appends one or more log entries.
	// For entries with Id=0, generates new IDs from sequence.
	// Sets Timestamp if not already set.
	// Returns the entries with generated IDs and timestamps populated.
	AppendEntries(ctx context.Context, entries ...*core.QueryLogEntry) ([]*core.QueryLogEntry, error)

	// GetRecentEntries retrieves the N most recent log entries, ordered by
	// timestamp descending. Returns up to limit entries.
	GetRecentEntries(ctx context.Context, limit int) ([]*core.QueryLogEntry, error)

	// CountEntries returns the number of logged queries.
	CountEntries(ctx context.Context) (int, error)
}

// CheckpointRepository persists progress markers for long-running jobs.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a job type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a job type.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, jobType string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a job type.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, jobType string) error
}
