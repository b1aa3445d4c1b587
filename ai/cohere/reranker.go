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


// Package cohere implements reranking via the Cohere v2 rerank API.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/refdex/ai"
)

// DefaultEndpoint is the hosted Cohere rerank endpoint.
const DefaultEndpoint = "https://api.cohere.com/v2/rerank"

// ErrAPIKeyRequired indicates the cohere backend was selected without credentials.
var ErrAPIKeyRequired = errors.New("cohere: API key is required")

// Reranker implements ai.Reranker against the Cohere v2 rerank API.
type Reranker struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

// NewReranker creates a reranker for the hosted Cohere API.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	if config.CohereAPIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	return &Reranker{
		endpoint: DefaultEndpoint,
		apiKey:   config.CohereAPIKey,
		model:    config.CohereModel,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   slog.Default().With("component", "cohere-reranker"),
	}, nil
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float32 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores each passage for relevance to the query.
// Scores are returned in input order regardless of the API's ranked order.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string) ([]float32, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	r.logger.Debug("reranking passages", "count", len(passages), "model", r.model)

	payload, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: passages,
		TopN:      len(passages),
	})
	if err != nil {
		return nil, fmt.Errorf("cohere: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("cohere: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("rerank request failed", "err", err)
		return nil, fmt.Errorf("cohere: rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		r.logger.Error("rerank request rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("cohere: rerank status %d: %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("cohere: decode response: %w", err)
	}

	scores := make([]float32, len(passages))
	for _, result := range parsed.Results {
		if result.Index < 0 || result.Index >= len(passages) {
			return nil, fmt.Errorf("cohere: result index %d out of range", result.Index)
		}
		scores[result.Index] = result.RelevanceScore
	}

	return scores, nil
}
