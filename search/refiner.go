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

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/poiesic/refdex/ai"
	"github.com/poiesic/refdex/core"
	"github.com/poiesic/refdex/storage"
)

// expansionFactor widens retrieval when a post-retrieval stage will
// reorder candidates. Reranking or boosting top_k results directly would
// only shuffle them; the stages need headroom to promote from.
const expansionFactor = 5

// Refiner runs the retrieve / rerank / boost pipeline over a chunk repository.
type Refiner struct {
	repository storage.ChunkRepository
	embedder   ai.Embedder
	rerankers  map[core.RerankBackend]ai.Reranker
	logger     *slog.Logger
}

// Option configures a Refiner.
type Option func(*Refiner) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Refiner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithReranker registers a reranking backend.
// Queries naming an unregistered backend fail with ErrRerankerUnavailable.
func WithReranker(backend core.RerankBackend, reranker ai.Reranker) Option {
	return func(r *Refiner) error {
		if err := core.ValidateRerankBackend(backend); err != nil {
			return err
		}
		r.rerankers[backend] = reranker
		return nil
	}
}

// NewRefiner creates a new refiner.
func NewRefiner(
	repository storage.ChunkRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Refiner, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Refiner{
		repository: repository,
		embedder:   embedder,
		rerankers:  make(map[core.RerankBackend]ai.Reranker),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Refine runs a query through the refinement pipeline.
// Returns up to query.TopK results, ranked by final score.
func (r *Refiner) Refine(ctx context.Context, query *core.SearchQuery) ([]*core.SearchResult, error) {
	return r.RefineWithMonitor(ctx, query, nil)
}

// RefineWithMonitor runs a query through the refinement pipeline with
// monitoring. The monitor receives callbacks after each stage.
func (r *Refiner) RefineWithMonitor(ctx context.Context, query *core.SearchQuery, monitor RefineMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := core.ValidateSearchQuery(query); err != nil {
		return nil, err
	}

	monitor.Start(query)

	// 1. Expand: widen retrieval when rerank or boost will reorder.
	fetchK := query.TopK
	if query.Rerank != core.RerankNone || query.KeywordBoost {
		fetchK = query.TopK * expansionFactor
	}

	// 2. Retrieve by vector similarity.
	vector, err := r.embedder.EmbedText(ctx, query.Text)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	candidates, err := r.repository.FindSimilar(ctx, vector, fetchK, query.Filters)
	if err != nil {
		r.logger.Error("error retrieving candidates", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}
	monitor.AfterRetrieval(candidates)

	// 3. Rerank: replace vector scores with cross-encoder scores.
	if query.Rerank != core.RerankNone {
		if err := r.rerank(ctx, query, candidates); err != nil {
			return nil, err
		}
		monitor.AfterRerank(candidates)
	}

	// 4. Boost: exact identifier matches on top of whatever scores stand.
	if query.KeywordBoost {
		identifiers := queryIdentifiers(query.Text)
		r.logger.Debug("applying keyword boost", "identifiers", identifiers)
		applyKeywordBoost(candidates, identifiers)
		monitor.AfterBoost(candidates)
	}

	// 5. Truncate: final order, then top_k.
	slices.SortFunc(candidates, compareCandidates)
	if len(candidates) > query.TopK {
		candidates = candidates[:query.TopK]
	}

	results := make([]*core.SearchResult, len(candidates))
	for i, candidate := range candidates {
		results[i] = projectResult(candidate)
	}
	monitor.Finish(results)

	return results, nil
}

// rerank rescores candidates in place with the configured backend.
func (r *Refiner) rerank(ctx context.Context, query *core.SearchQuery, candidates []*core.Candidate) error {
	reranker, ok := r.rerankers[query.Rerank]
	if !ok || reranker == nil {
		return fmt.Errorf("%w: %s", ErrRerankerUnavailable, query.Rerank)
	}
	if len(candidates) == 0 {
		return nil
	}

	texts := make([]string, len(candidates))
	for i, candidate := range candidates {
		texts[i] = candidate.Text
	}

	scores, err := reranker.Rerank(ctx, query.Text, texts)
	if err != nil {
		return fmt.Errorf("%w (%s): %v", ErrRerankFailed, query.Rerank, err)
	}
	if len(scores) != len(candidates) {
		return fmt.Errorf("%w (%s): expected %d scores, received %d",
			ErrRerankFailed, query.Rerank, len(candidates), len(scores))
	}

	for i, candidate := range candidates {
		candidate.Score = scores[i]
	}
	return nil
}

// compareCandidates orders by score descending, breaking ties by the
// original retrieval rank so equal scores stay deterministic.
func compareCandidates(a, b *core.Candidate) int {
	if a.Score > b.Score {
		return -1
	}
	if a.Score < b.Score {
		return 1
	}
	return a.OriginalRank - b.OriginalRank
}

// projectResult builds the final result view of a candidate.
func projectResult(candidate *core.Candidate) *core.SearchResult {
	page, _ := strconv.Atoi(candidate.Metadata["page"])
	return &core.SearchResult{
		Score:   candidate.Score,
		Source:  candidate.Metadata["source"],
		Section: candidate.Metadata["section"],
		Page:    page,
		Text:    candidate.Text,
	}
}
