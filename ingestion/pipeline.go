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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/refdex/ai"
	"github.com/poiesic/refdex/chunk"
	"github.com/poiesic/refdex/core"
	"github.com/poiesic/refdex/storage"
)

// Pipeline orchestrates reading, chunking, embedding, and storing documents.
type Pipeline struct {
	repository storage.ChunkRepository
	embedder   ai.Embedder
	chunker    *chunk.Chunker
	reader     Reader
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent document ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithReader sets a custom document reader.
// Default is FileReader.
func WithReader(reader Reader) Option {
	return func(p *Pipeline) error {
		p.reader = reader
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.ChunkRepository,
	embedder ai.Embedder,
	chunker *chunk.Chunker,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		embedder:   embedder,
		chunker:    chunker,
		reader:     FileReader{},
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Metadata map[string]string // attached to every chunk of the document
}

// Result reports the outcome of ingesting one path.
type Result struct {
	Source string
	Chunks int
	Err    error
}

// IngestPath ingests a single document and returns the number of chunks
// stored. Any previous chunks of the same source are replaced, so
// re-ingesting a document is idempotent.
// Returns core.ErrNoContent when the document yields no chunks; storage
// is left untouched in that case.
func (p *Pipeline) IngestPath(ctx context.Context, path string, opts *IngestOptions) (int, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}

	doc, err := p.reader.Read(path)
	if err != nil {
		return 0, err
	}

	var chunks []*core.Chunk
	if len(doc.Pages) > 0 {
		chunks = p.chunker.ChunkPages(doc.Pages, doc.Source, opts.Metadata)
	} else {
		chunks = p.chunker.ChunkText(doc.Text, doc.Source, opts.Metadata)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%s: %w", doc.Source, core.ErrNoContent)
	}

	p.logger.Info("embedding document", "source", doc.Source, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %w", ErrEmbeddingFailed, doc.Source, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w for %s: expected %d vectors, received %d",
			ErrEmbeddingFailed, doc.Source, len(chunks), len(vectors))
	}

	records := make([]*core.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = &core.ChunkRecord{
			Id:       core.IDFromContent(c.Text),
			Source:   c.Source,
			Section:  c.Section,
			Page:     c.Page,
			Index:    c.Index,
			Text:     c.Text,
			Vector:   core.NormalizeVector(vectors[i]),
			Metadata: c.Metadata,
		}
	}

	// Replace, don't append: stale chunks from a previous revision of the
	// document must not survive re-ingestion.
	if _, err := p.repository.DeleteDocument(ctx, doc.Source); err != nil {
		return 0, fmt.Errorf("replacing %s: %w", doc.Source, err)
	}
	if _, err := p.repository.AddChunks(ctx, records...); err != nil {
		return 0, fmt.Errorf("storing %s: %w", doc.Source, err)
	}

	return len(records), nil
}

// IngestPaths ingests multiple documents concurrently.
// One result is returned per path, in input order. A failing document
// does not stop the others.
func (p *Pipeline) IngestPaths(ctx context.Context, paths []string, opts *IngestOptions) []Result {
	results := make([]Result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			count, err := p.IngestPath(ctx, path, opts)
			results[i] = Result{Source: path, Chunks: count, Err: err}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = Result{Source: path, Err: submitErr}
		}
	}
	wg.Wait()

	return results
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
