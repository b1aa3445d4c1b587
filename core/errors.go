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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidQuery indicates a SearchQuery failed validation.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrEmptyBody indicates a chunk body is empty.
	ErrEmptyBody = errors.New("chunk body cannot be empty")

	// ErrInvalidChunkKind indicates an invalid ChunkKind value.
	ErrInvalidChunkKind = errors.New("invalid chunk kind")

	// ErrEmptyQueryText indicates the query text is empty.
	ErrEmptyQueryText = errors.New("query text cannot be empty")

	// ErrInvalidTopK indicates a non-positive result count.
	ErrInvalidTopK = errors.New("top-k must be positive")

	// ErrInvalidRerankBackend indicates an unknown reranker selector.
	ErrInvalidRerankBackend = errors.New("invalid rerank backend")

	// ErrNoContent indicates a document produced zero chunks.
	// This is a distinguishable outcome, not a pipeline failure.
	ErrNoContent = errors.New("document produced no content")
)
