// Package tei implements reranking against a text-embeddings-inference
// server's /rerank endpoint. Both the small and large local reranking
// tiers use this protocol; which cross-encoder answers depends on the
// model served at the configured host.
package tei

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

// ErrHostRequired indicates a local rerank backend was selected without a host.
var ErrHostRequired = errors.New("tei: rerank host is required")

// Reranker implements ai.Reranker against a text-embeddings-inference server.
type Reranker struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

// NewReranker creates a reranker for a local text-embeddings-inference
// server. The model is informational; the server scores with whatever
// cross-encoder it was launched with. Only the rerank host is required;
// a rerank-only consumer need not configure embedding settings.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config, model string) (ai.Reranker, error) {
	config.Normalize()
	if config.RerankHost == "" {
		return nil, ErrHostRequired
	}

	return &Reranker{
		endpoint: config.RerankHost + "/rerank",
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
		logger:   slog.Default().With("component", "tei-reranker", "model", model),
	}, nil
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

// Rerank scores each passage for relevance to the query.
// Scores are returned in input order regardless of the server's ranked order.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string) ([]float32, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	r.logger.Debug("reranking passages", "count", len(passages))

	payload, err := json.Marshal(rerankRequest{Query: query, Texts: passages})
	if err != nil {
		return nil, fmt.Errorf("tei: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tei: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("rerank request failed", "err", err)
		return nil, fmt.Errorf("tei: rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		r.logger.Error("rerank request rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("tei: rerank status %d: %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("tei: decode response: %w", err)
	}

	scores := make([]float32, len(passages))
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(passages) {
			return nil, fmt.Errorf("tei: result index %d out of range", result.Index)
		}
		scores[result.Index] = result.Score
	}

	return scores, nil
}
