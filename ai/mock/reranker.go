package mock

import (
	"context"
	"strings"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, uses default deterministic behavior.
	RerankFunc func(ctx context.Context, query string, passages []string) ([]float32, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default deterministic behavior.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank scores passages by case-insensitive word overlap with the query.
// A passage sharing every query word scores 1, sharing none scores 0.
func (m *MockReranker) Rerank(ctx context.Context, query string, passages []string) ([]float32, error) {
	m.callCount++

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, passages)
	}

	words := strings.Fields(strings.ToLower(query))
	scores := make([]float32, len(passages))
	if len(words) == 0 {
		return scores, nil
	}
	for i, passage := range passages {
		lower := strings.ToLower(passage)
		var hits int
		for _, word := range words {
			if strings.Contains(lower, word) {
				hits++
			}
		}
		scores[i] = float32(hits) / float32(len(words))
	}
	return scores, nil
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankFunc = nil
}
