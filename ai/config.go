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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for the model service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	EmbeddingModel string

	// RerankHost is the base URL of a local text-embeddings-inference
	// server exposing the /rerank endpoint.
	RerankHost string

	// RerankSmallModel is the cross-encoder served for the fast local
	// reranking tier.
	RerankSmallModel string

	// RerankLargeModel is the cross-encoder served for the high-quality
	// local reranking tier.
	RerankLargeModel string

	// CohereAPIKey authenticates against the Cohere rerank API.
	// Empty disables the cohere backend.
	CohereAPIKey string

	// CohereModel is the Cohere rerank model identifier.
	CohereModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithRerankHost sets the local reranking service host URL.
func WithRerankHost(host string) ConfigOption {
	return func(c *Config) {
		c.RerankHost = host
	}
}

// WithRerankSmallModel sets the fast local reranking model.
func WithRerankSmallModel(model string) ConfigOption {
	return func(c *Config) {
		c.RerankSmallModel = model
	}
}

// WithRerankLargeModel sets the high-quality local reranking model.
func WithRerankLargeModel(model string) ConfigOption {
	return func(c *Config) {
		c.RerankLargeModel = model
	}
}

// WithCohereAPIKey sets the Cohere API key.
func WithCohereAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.CohereAPIKey = key
	}
}

// WithCohereModel sets the Cohere rerank model identifier.
func WithCohereModel(model string) ConfigOption {
	return func(c *Config) {
		c.CohereModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults for local services.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:    "http://localhost:11434/v1",
		EmbeddingModel:   "nomic-embed-text",
		RerankHost:       "http://localhost:8087",
		RerankSmallModel: "BAAI/bge-reranker-base",
		RerankLargeModel: "BAAI/bge-reranker-large",
		CohereModel:      "rerank-english-v3.0",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// The embedding host gets a /v1 suffix if missing, which is required by
// most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc). The rerank
// host only loses any trailing slash; text-embeddings-inference serves
// /rerank at the root.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	c.RerankHost = strings.TrimSuffix(c.RerankHost, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	return nil
}
