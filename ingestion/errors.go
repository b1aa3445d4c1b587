package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a chunk repository is not provided.
	ErrRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrUnsupportedFormat is returned for source files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmbeddingFailed wraps embedding provider errors. Storage is left
	// untouched when embedding fails.
	ErrEmbeddingFailed = errors.New("embedding failed")
)
