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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

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

func main() {
	embeddingFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "nomic-embed-text",
		},
	}

	app := &cli.App{
		Name:  "refdex",
		Usage: "Semantic search over technical reference manuals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory holding named databases",
				Value:   defaultDataDir(),
				EnvVars: []string{"REFDEX_DATA_DIR"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "create-db",
				Usage:     "Create a new database",
				ArgsUsage: "<db-name>",
				Action:    createDBCommand,
			},
			{
				Name:   "list-dbs",
				Usage:  "List all databases",
				Action: listDBsCommand,
			},
			{
				Name:      "delete-db",
				Usage:     "Delete a database",
				ArgsUsage: "<db-name>",
				Action:    deleteDBCommand,
			},
			{
				Name:      "ingest",
				Usage:     "Ingest PDF, markdown or text files into a database",
				ArgsUsage: "<db-name> <file> [<file>...]",
				Action:    ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Extra metadata (key=value), can be repeated",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk token budget",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap token budget",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Documents processed in parallel",
						Value: 2,
					},
				}, embeddingFlags...),
			},
			{
				Name:      "search",
				Usage:     "Search a database",
				ArgsUsage: "<db-name> <query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Filter by metadata (key=value), can be repeated",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to return",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "rerank",
						Usage: "Rerank results with the Cohere API (requires an API key)",
					},
					&cli.BoolFlag{
						Name:  "rerank-local",
						Usage: "Rerank results with the fast local cross-encoder",
					},
					&cli.BoolFlag{
						Name:  "rerank-large",
						Usage: "Rerank results with the high-quality local cross-encoder",
					},
					&cli.BoolFlag{
						Name:  "keyword-boost",
						Usage: "Boost results containing exact register identifiers from the query",
					},
					&cli.StringFlag{
						Name:    "cohere-api-key",
						Usage:   "Cohere API key for --rerank",
						EnvVars: []string{"COHERE_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "rerank-host",
						Usage: "Local reranking service host URL",
						Value: "http://localhost:8087",
					},
				}, embeddingFlags...),
			},
			{
				Name:      "list-docs",
				Usage:     "List documents in a database",
				ArgsUsage: "<db-name>",
				Action:    listDocsCommand,
			},
			{
				Name:      "delete-doc",
				Usage:     "Delete a document from a database",
				ArgsUsage: "<db-name> <doc-name>",
				Action:    deleteDocCommand,
			},
			{
				Name:      "stats",
				Usage:     "Show index statistics for a database",
				ArgsUsage: "<db-name>",
				Action:    statsCommand,
			},
			{
				Name:      "reembed",
				Usage:     "Reembed all stored chunks with new embeddings",
				ArgsUsage: "<db-name>",
				Action:    reembedCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}, embeddingFlags...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "databases"
	}
	return filepath.Join(home, ".refdex", "databases")
}

func databasePath(c *cli.Context, name string) string {
	return filepath.Join(c.String("data-dir"), name)
}

func databaseExists(c *cli.Context, name string) bool {
	info, err := os.Stat(databasePath(c, name))
	return err == nil && info.IsDir()
}

// openRepository opens the named database and its chunk repository.
// The caller closes the repository, then the backend.
func openRepository(c *cli.Context, name string) (*badger.Backend, storage.ChunkRepository, error) {
	backend, err := badger.OpenBackend(databasePath(c, name), false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create repository: %w", err)
	}

	return backend, repo, nil
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// parseKeyValues splits repeated key=value arguments. Entries without
// an equals sign are ignored, matching lenient flag parsing elsewhere.
func parseKeyValues(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	parsed := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if found {
			parsed[key] = value
		}
	}
	return parsed
}

func createDBCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	if databaseExists(c, name) {
		return fmt.Errorf("database %q already exists", name)
	}

	// Opening the backend initializes the directory layout.
	backend, err := badger.OpenBackend(databasePath(c, name), false)
	if err != nil {
		return fmt.Errorf("failed to create database %q: %w", name, err)
	}
	if err := backend.Close(); err != nil {
		return err
	}

	fmt.Printf("Created database: %s\n", name)
	return nil
}

func listDBsCommand(c *cli.Context) error {
	entries, err := os.ReadDir(c.String("data-dir"))
	if os.IsNotExist(err) || (err == nil && len(entries) == 0) {
		fmt.Println("No databases found.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println("Available databases:")
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		backend, repo, err := openRepository(c, entry.Name())
		if err != nil {
			fmt.Printf("  - %s (unreadable: %v)\n", entry.Name(), err)
			continue
		}
		stats, err := repo.Stats(c.Context)
		repo.Close()
		backend.Close()
		if err != nil {
			return err
		}

		fmt.Printf("  - %s (%d chunks, %d documents)\n", entry.Name(), stats.Chunks, stats.Documents)
	}
	return nil
}

func deleteDBCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	if !databaseExists(c, name) {
		return fmt.Errorf("database %q not found", name)
	}

	if err := os.RemoveAll(databasePath(c, name)); err != nil {
		return fmt.Errorf("failed to delete database %q: %w", name, err)
	}

	fmt.Printf("Deleted database: %s\n", name)
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	paths := c.Args().Tail()
	if len(paths) == 0 {
		return fmt.Errorf("at least one file path is required")
	}
	if !databaseExists(c, name) {
		return fmt.Errorf("database %q not found; create it first with 'create-db'", name)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	backend, repo, err := openRepository(c, name)
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	tokenizer, err := chunk.NewTiktokenTokenizer()
	if err != nil {
		return fmt.Errorf("failed to create tokenizer: %w", err)
	}

	chunker, err := chunk.NewChunker(tokenizer, chunk.NewConfig(
		chunk.WithChunkSize(c.Int("chunk-size")),
		chunk.WithChunkOverlap(c.Int("chunk-overlap")),
	))
	if err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(repo, embedder, chunker,
		ingestion.WithPoolSize(c.Int("workers")),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	opts := &ingestion.IngestOptions{Metadata: parseKeyValues(c.StringSlice("meta"))}

	failed := 0
	for _, result := range pipeline.IngestPaths(ctx, paths, opts) {
		if result.Err != nil {
			failed++
			fmt.Printf("  %s: %v\n", result.Source, result.Err)
			continue
		}
		fmt.Printf("  %s: added %d chunks to database %q\n", result.Source, result.Chunks, name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

// rerankBackend maps the mutually exclusive rerank flags to a backend,
// preferring the highest-quality one when several are set.
func rerankBackend(c *cli.Context) core.RerankBackend {
	switch {
	case c.Bool("rerank-large"):
		return core.RerankLarge
	case c.Bool("rerank-local"):
		return core.RerankLocal
	case c.Bool("rerank"):
		return core.RerankCohere
	default:
		return core.RerankNone
	}
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	query := c.Args().Get(1)
	if query == "" {
		return fmt.Errorf("search query is required")
	}
	if !databaseExists(c, name) {
		return fmt.Errorf("database %q not found", name)
	}

	backend, repo, err := openRepository(c, name)
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithCohereAPIKey(c.String("cohere-api-key")),
		ai.WithRerankHost(c.String("rerank-host")),
	)

	var refinerOpts []search.Option
	if aiConfig.CohereAPIKey != "" {
		reranker, err := cohere.NewReranker(aiConfig)
		if err != nil {
			return err
		}
		refinerOpts = append(refinerOpts, search.WithReranker(core.RerankCohere, reranker))
	}
	if aiConfig.RerankHost != "" {
		small, err := tei.NewReranker(aiConfig, aiConfig.RerankSmallModel)
		if err != nil {
			return err
		}
		large, err := tei.NewReranker(aiConfig, aiConfig.RerankLargeModel)
		if err != nil {
			return err
		}
		refinerOpts = append(refinerOpts,
			search.WithReranker(core.RerankLocal, small),
			search.WithReranker(core.RerankLarge, large),
		)
	}

	refiner, err := search.NewRefiner(repo, embedder, refinerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create refiner: %w", err)
	}

	searchQuery := &core.SearchQuery{
		Text:         query,
		TopK:         c.Int("top-k"),
		Rerank:       rerankBackend(c),
		KeywordBoost: c.Bool("keyword-boost"),
		Filters:      parseKeyValues(c.StringSlice("filter")),
	}

	start := time.Now()
	results, err := refiner.Refine(ctx, searchQuery)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	elapsed := time.Since(start)

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("\nSearch results for: %q\n\n", query)
	for i, result := range results {
		text := result.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}

		location := ""
		switch {
		case result.Page > 0:
			location = fmt.Sprintf("Page: %d", result.Page)
		case result.Section != "":
			section := result.Section
			if len(section) > 30 {
				section = section[:30]
			}
			location = "Section: " + section
		}
		fmt.Printf("[%d] Score: %.2f | Source: %s | %s\n", i+1, result.Score, result.Source, location)
		fmt.Printf("    %q\n\n", text)
	}
	fmt.Printf("Search time: %dms\n", elapsed.Milliseconds())
	return nil
}

func listDocsCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	if !databaseExists(c, name) {
		return fmt.Errorf("database %q not found", name)
	}

	backend, repo, err := openRepository(c, name)
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	docs, err := repo.ListDocuments(c.Context)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Printf("No documents in database %q.\n", name)
		return nil
	}

	fmt.Printf("Documents in %q:\n", name)
	for _, doc := range docs {
		fmt.Printf("  - %s (%d chunks, ingested %s)\n",
			doc.Source, doc.Chunks, doc.InsertedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func deleteDocCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	docName := c.Args().Get(1)
	if docName == "" {
		return fmt.Errorf("document name is required")
	}
	if !databaseExists(c, name) {
		return fmt.Errorf("database %q not found", name)
	}

	backend, repo, err := openRepository(c, name)
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	deleted, err := repo.DeleteDocument(c.Context, docName)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("document %q not found in database", docName)
	}

	fmt.Printf("Deleted %d chunks from %q\n", deleted, docName)
	return nil
}

func statsCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	if !databaseExists(c, name) {
		return fmt.Errorf("database %q not found", name)
	}

	backend, repo, err := openRepository(c, name)
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	stats, err := repo.Stats(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", name)
	fmt.Printf("  Documents: %d\n", stats.Documents)
	fmt.Printf("  Chunks: %d\n", stats.Chunks)
	fmt.Printf("  Embedding dimension: %d\n", stats.Dimension)
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	if !databaseExists(c, name) {
		return fmt.Errorf("database %q not found", name)
	}

	backend, repo, err := openRepository(c, name)
	if err != nil {
		return err
	}
	defer backend.Close()
	defer repo.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", name)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
