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

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Body must not be empty
//   - Kind must be valid once the classifier has run (0 is valid before)
//
// NOT validated (populated later in the pipeline):
//   - Title, KeyTerms, Text (set by the classifier and stitcher)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Body == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyBody)
	}

	if chunk.Kind != 0 {
		if err := ValidateChunkKind(chunk.Kind); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
		}
	}

	return nil
}

// ValidateChunkKind validates that a ChunkKind has a valid value.
func ValidateChunkKind(kind ChunkKind) error {
	switch kind {
	case ChunkRegular, ChunkRegisterDefinition, ChunkOverview:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidChunkKind, kind)
	}
}

// ValidateSearchQuery validates a SearchQuery according to domain rules.
func ValidateSearchQuery(query *SearchQuery) error {
	if query == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}

	if query.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrEmptyQueryText)
	}

	if query.TopK <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrInvalidTopK)
	}

	if err := ValidateRerankBackend(query.Rerank); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	return nil
}

// ValidateRerankBackend validates that a RerankBackend has a known value.
func ValidateRerankBackend(backend RerankBackend) error {
	switch backend {
	case RerankNone, RerankCohere, RerankLocal, RerankLarge:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRerankBackend, backend)
	}
}
