package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/refdex/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReranker_RequiresHost(t *testing.T) {
	cfg := ai.NewConfig(ai.WithRerankHost(""))
	_, err := NewReranker(cfg, "small")
	assert.ErrorIs(t, err, ErrHostRequired)
}

func TestNewReranker_RerankOnlyConfig(t *testing.T) {
	// No embedding settings needed to talk to a rerank server.
	cfg := &ai.Config{RerankHost: "http://localhost:8087/"}
	reranker, err := NewReranker(cfg, "small")
	require.NoError(t, err)
	assert.NotNil(t, reranker)
	assert.Equal(t, "http://localhost:8087/rerank", reranker.(*Reranker).endpoint)
}

func TestRerank_ScoresInInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GPIO configuration", req.Query)
		require.Len(t, req.Texts, 3)

		// Server returns results ranked by score, not input order.
		results := []rerankResult{
			{Index: 2, Score: 0.91},
			{Index: 0, Score: 0.40},
			{Index: 1, Score: 0.05},
		}
		json.NewEncoder(w).Encode(results)
	}))
	defer srv.Close()

	reranker, err := NewReranker(ai.NewConfig(ai.WithRerankHost(srv.URL)), "small")
	require.NoError(t, err)

	scores, err := reranker.Rerank(context.Background(), "GPIO configuration", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.40, 0.05, 0.91}, scores)
}

func TestRerank_EmptyPassages(t *testing.T) {
	reranker, err := NewReranker(ai.NewConfig(ai.WithRerankHost("http://localhost:1")), "small")
	require.NoError(t, err)

	scores, err := reranker.Rerank(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestRerank_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	reranker, err := NewReranker(ai.NewConfig(ai.WithRerankHost(srv.URL)), "large")
	require.NoError(t, err)

	_, err = reranker.Rerank(context.Background(), "query", []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRerank_IndexOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rerankResult{{Index: 7, Score: 0.5}})
	}))
	defer srv.Close()

	reranker, err := NewReranker(ai.NewConfig(ai.WithRerankHost(srv.URL)), "small")
	require.NoError(t, err)

	_, err = reranker.Rerank(context.Background(), "query", []string{"a", "b"})
	assert.Error(t, err)
}
