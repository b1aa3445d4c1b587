// Copyright 2026 Poiesic Systems
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


package search

import "errors"

var (
	// ErrRepositoryRequired is returned when a chunk repository is not provided.
	ErrRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingFailed wraps embedding provider errors for the query text.
	ErrEmbeddingFailed = errors.New("query embedding failed")

	// ErrRetrievalFailed wraps vector store errors during candidate retrieval.
	ErrRetrievalFailed = errors.New("candidate retrieval failed")

	// ErrRerankerUnavailable is returned when a query requests a reranking
	// backend that was not configured.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrRerankFailed wraps reranker errors. Reranking never falls back to
	// the vector ordering silently; a failed rerank fails the query.
	ErrRerankFailed = errors.New("rerank failed")
)
