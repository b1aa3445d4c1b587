package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores candidate passages against a query with a cross-encoder
// model. Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Rerank scores each passage for relevance to the query.
	// The returned slice contains one score per passage, in input order.
	// Scores from different reranker models are not comparable to each
	// other or to vector distances.
	// Returns an error if scoring fails; callers must not fall back to
	// the pre-rerank ordering silently.
	Rerank(ctx context.Context, query string, passages []string) ([]float32, error)
}
