package storage

import (
	"context"
	"time"

	"github.com/poiesic/refdex/core"
)

// DocumentInfo summarizes one ingested document.
type DocumentInfo struct {
	Source     string
	Chunks     int
	InsertedAt time.Time // earliest chunk insertion time
}

// Stats describes an index as a whole.
type Stats struct {
	Documents int
	Chunks    int
	Dimension int // 0 until the first chunk is stored
}

// ChunkRepository provides operations for managing embedded chunk records.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunks adds one or more chunk records to storage.
	// IDs are content-derived; a record whose ID already exists is
	// overwritten. Sets InsertedAt if not already set.
	// The first stored record fixes the index's embedding dimension;
	// returns ErrDimensionMismatch for vectors of any other length.
	AddChunks(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error)

	// UpdateChunks rewrites existing chunk records in place.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateChunks(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error)

	// GetChunk retrieves a single chunk record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.ChunkRecord, error)

	// GetChunksBySource retrieves all chunk records of one document,
	// ordered by chunk index.
	GetChunksBySource(ctx context.Context, source string) ([]*core.ChunkRecord, error)

	// IterateChunks calls fn for every stored chunk record.
	// Iteration stops at the first error from fn and returns it.
	IterateChunks(ctx context.Context, fn func(record *core.ChunkRecord) error) error

	// DeleteDocument removes every chunk record of the given source.
	// Returns the number of chunks removed; zero with no error when the
	// source is unknown.
	DeleteDocument(ctx context.Context, source string) (int, error)

	// ListDocuments returns a summary of every ingested document,
	// ordered by source name.
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)

	// FindSimilar finds chunk records similar to the given vector.
	// Records must match every filter exactly to be considered.
	// Returns up to limit candidates ordered by similarity (highest
	// first), with OriginalRank set to the position in that ordering.
	// Returns ErrDimensionMismatch if the query vector's length differs
	// from the index dimension.
	FindSimilar(ctx context.Context, vector []float32, limit int, filters map[string]string) ([]*core.Candidate, error)

	// Stats reports document count, chunk count, and embedding dimension.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
