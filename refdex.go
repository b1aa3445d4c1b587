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


package refdex

import (
	"io"
	"log/slog"

	"github.com/poiesic/refdex/ai"
	"github.com/poiesic/refdex/ai/cohere"
	"github.com/poiesic/refdex/ai/openai"
	"github.com/poiesic/refdex/ai/tei"
	"github.com/poiesic/refdex/chunk"
	"github.com/poiesic/refdex/core"
	"github.com/poiesic/refdex/ingestion"
	"github.com/poiesic/refdex/reembed"
	"github.com/poiesic/refdex/search"
	"github.com/poiesic/refdex/storage"
	"github.com/poiesic/refdex/storage/badger"
)

// Database bundles the storage backend, the chunking engine and the
// embedding client behind one handle. It is the entry point for both
// library consumers and the CLI.
type Database struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	embedder  ai.Embedder
	chunker   *chunk.Chunker
	aiConfig  *ai.Config
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	chunkOpts []chunk.ConfigOption
	tokenizer chunk.Tokenizer
	embedder  ai.Embedder
}

// WithAIConfig sets the embedding and reranking configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithChunkOptions overrides chunking parameters such as the token
// budget and overlap.
func WithChunkOptions(opts ...chunk.ConfigOption) DatabaseOption {
	return func(o *databaseOptions) {
		o.chunkOpts = append(o.chunkOpts, opts...)
	}
}

// WithTokenizer sets a custom tokenizer for the chunking engine.
// Default is the cl100k_base tiktoken tokenizer.
func WithTokenizer(tok chunk.Tokenizer) DatabaseOption {
	return func(o *databaseOptions) {
		o.tokenizer = tok
	}
}

// WithEmbedder sets a custom embedding client.
// Default is an OpenAI-compatible client built from the AI config.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// Open opens or creates an index at filePath.
func Open(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	tokenizer := options.tokenizer
	if tokenizer == nil {
		tokenizer, err = chunk.NewTiktokenTokenizer()
		if err != nil {
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	chunker, err := chunk.NewChunker(tokenizer, chunk.NewConfig(options.chunkOpts...))
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		chunkRepo: chunkRepo,
		embedder:  embedder,
		chunker:   chunker,
		aiConfig:  options.aiConfig,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chunkRepo, db.embedder, db.chunker, opts...)
}

// NewRefiner builds a search refiner with every reranking backend the
// AI config can reach. Backends without configuration stay
// unregistered, and queries naming them fail.
func (db *Database) NewRefiner(opts ...search.Option) (*search.Refiner, error) {
	var backendOpts []search.Option

	if db.aiConfig.CohereAPIKey != "" {
		reranker, err := cohere.NewReranker(db.aiConfig)
		if err != nil {
			return nil, err
		}
		backendOpts = append(backendOpts, search.WithReranker(core.RerankCohere, reranker))
	}

	if db.aiConfig.RerankHost != "" {
		small, err := tei.NewReranker(db.aiConfig, db.aiConfig.RerankSmallModel)
		if err != nil {
			return nil, err
		}
		backendOpts = append(backendOpts, search.WithReranker(core.RerankLocal, small))

		large, err := tei.NewReranker(db.aiConfig, db.aiConfig.RerankLargeModel)
		if err != nil {
			return nil, err
		}
		backendOpts = append(backendOpts, search.WithReranker(core.RerankLarge, large))
	}

	return search.NewRefiner(db.chunkRepo, db.embedder, append(backendOpts, opts...)...)
}

// NewReembedder builds a reembedder that rewrites every stored vector
// with the current embedding model. Progress is written to w.
func (db *Database) NewReembedder(config *reembed.Config, w io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.chunkRepo, db.embedder, config, w)
}
