// Package reembed provides functionality for reembedding stored chunk
// records with a new or updated embedding model.
//
// This package supports batch processing of chunk records, progress
// tracking, retry logic with exponential backoff, and vector
// normalization to ensure compatibility with cosine similarity search.
// A run covers every chunk in the index; partial reembedding would leave
// vectors from two models in one vector space.
package reembed
