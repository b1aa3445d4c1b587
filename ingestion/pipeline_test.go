package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/refdex/ai/mock"
	"github.com/poiesic/refdex/chunk"
	"github.com/poiesic/refdex/core"
	"github.com/poiesic/refdex/storage"
	"github.com/poiesic/refdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spaceTokenizer counts whitespace-separated words. Deterministic and
// offline, unlike the production BPE tokenizer.
type spaceTokenizer struct{}

func (spaceTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (spaceTokenizer) Head(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func (spaceTokenizer) Tail(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

func newTestPipeline(t *testing.T) (*Pipeline, storage.ChunkRepository) {
	t.Helper()

	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	chunker, err := chunk.NewChunker(spaceTokenizer{}, chunk.DefaultConfig())
	require.NoError(t, err)

	pipeline, err := NewPipeline(repo, mock.NewMockEmbedder(), chunker, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repo
}

func writeTestDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleDoc = `# GPIO registers

Each of the general purpose IO ports has two 32 bit configuration registers.

# AFIO registers

The alternate function registers remap peripheral pins.
`

func TestNewPipeline_Validation(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	chunker, err := chunk.NewChunker(spaceTokenizer{}, chunk.DefaultConfig())
	require.NoError(t, err)

	_, err = NewPipeline(nil, mock.NewMockEmbedder(), chunker)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewPipeline(repo, nil, chunker)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(repo, mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ErrChunkerRequired)
}

func TestIngestPath(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	path := writeTestDoc(t, "rm0041.md", sampleDoc)

	count, err := pipeline.IngestPath(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := repo.GetChunksBySource(ctx, "rm0041.md")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "GPIO registers", records[0].Section)
	assert.Equal(t, "AFIO registers", records[1].Section)
	assert.NotEmpty(t, records[0].Vector)
}

func TestIngestPath_Reingest(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	path := writeTestDoc(t, "rm0041.md", sampleDoc)

	_, err := pipeline.IngestPath(ctx, path, nil)
	require.NoError(t, err)
	_, err = pipeline.IngestPath(ctx, path, nil)
	require.NoError(t, err)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 1, stats.Documents)
}

func TestIngestPath_ReplacesPreviousRevision(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "rm0041.md")

	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0644))
	_, err := pipeline.IngestPath(ctx, path, nil)
	require.NoError(t, err)

	revised := "# GPIO registers\n\nThe revised edition of this manual drops the alternate function section entirely.\n"
	require.NoError(t, os.WriteFile(path, []byte(revised), 0644))
	count, err := pipeline.IngestPath(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := repo.GetChunksBySource(ctx, "rm0041.md")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestIngestPath_NoContent(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	path := writeTestDoc(t, "empty.md", "\n\n")

	_, err := pipeline.IngestPath(ctx, path, nil)
	assert.ErrorIs(t, err, core.ErrNoContent)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
}

func TestIngestPath_Metadata(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	path := writeTestDoc(t, "rm0041.md", sampleDoc)

	_, err := pipeline.IngestPath(ctx, path, &IngestOptions{
		Metadata: map[string]string{"device": "stm32f1"},
	})
	require.NoError(t, err)

	records, err := repo.GetChunksBySource(ctx, "rm0041.md")
	require.NoError(t, err)
	for _, record := range records {
		assert.Equal(t, "stm32f1", record.Metadata["device"])
	}
}

func TestIngestPath_EmbedderFailure(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	chunker, err := chunk.NewChunker(spaceTokenizer{}, chunk.DefaultConfig())
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model unavailable")
	}

	pipeline, err := NewPipeline(repo, embedder, chunker)
	require.NoError(t, err)
	defer pipeline.Release()

	path := writeTestDoc(t, "rm0041.md", sampleDoc)
	_, err = pipeline.IngestPath(context.Background(), path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "model unavailable")

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
}

func TestIngestPath_NormalizesVectors(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	chunker, err := chunk.NewChunker(spaceTokenizer{}, chunk.DefaultConfig())
	require.NoError(t, err)

	// The provider returns vectors of very different magnitudes: the
	// first chunk's vector is long but points away from the query, the
	// second is a unit vector pointing straight at it.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		require.Len(t, texts, 2)
		return [][]float32{{5, 5, 0}, {1, 0, 0}}, nil
	}

	pipeline, err := NewPipeline(repo, embedder, chunker)
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	path := writeTestDoc(t, "rm0041.md", sampleDoc)
	_, err = pipeline.IngestPath(ctx, path, nil)
	require.NoError(t, err)

	records, err := repo.GetChunksBySource(ctx, "rm0041.md")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		var sumSquares float64
		for _, val := range record.Vector {
			sumSquares += float64(val) * float64(val)
		}
		assert.InDelta(t, 1.0, sumSquares, 1e-6)
	}

	// Direction must outrank magnitude: the aligned unit vector wins
	// even though the other chunk's raw vector was five times longer.
	candidates, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "AFIO registers", candidates[0].Metadata["section"])
	assert.InDelta(t, 1.0, candidates[0].Score, 1e-6)
	assert.InDelta(t, 0.707, candidates[1].Score, 1e-3)
}

func TestIngestPaths(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	good := writeTestDoc(t, "rm0041.md", sampleDoc)
	other := writeTestDoc(t, "an4776.md", "# Timer cookbook\n\nGeneral purpose timer usage examples for PWM generation and input capture.\n")
	bad := writeTestDoc(t, "scan.png", "not a document")

	results := pipeline.IngestPaths(ctx, []string{good, other, bad}, nil)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Chunks)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, results[1].Chunks)
	assert.ErrorIs(t, results[2].Err, ErrUnsupportedFormat)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
}

func TestFileReader_UnsupportedFormat(t *testing.T) {
	_, err := FileReader{}.Read("diagram.svg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
