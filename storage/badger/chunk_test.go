package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/refdex/core"
	"github.com/poiesic/refdex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(source string, index int, vector []float32) *core.ChunkRecord {
	text := fmt.Sprintf("%s chunk %d", source, index)
	return &core.ChunkRecord{
		Id:      core.IDFromContent(text),
		Source:  source,
		Section: "Registers",
		Index:   index,
		Text:    text,
		Vector:  vector,
	}
}

func TestAddChunks_GetChunk(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := testRecord("rm0041.md", 0, []float32{1, 0, 0})
	record.Metadata = map[string]string{"device": "stm32f1"}

	_, err := repo.AddChunks(ctx, record)
	require.NoError(t, err)
	assert.False(t, record.InsertedAt.IsZero())

	got, err := repo.GetChunk(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, record.Text, got.Text)
	assert.Equal(t, record.Vector, got.Vector)
	assert.Equal(t, "stm32f1", got.Metadata["device"])
}

func TestGetChunk_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetChunk(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddChunks_ReingestOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := testRecord("rm0041.md", 0, []float32{1, 0, 0})
	_, err := repo.AddChunks(ctx, record)
	require.NoError(t, err)

	// Same content produces the same ID; re-ingestion must not duplicate.
	again := testRecord("rm0041.md", 0, []float32{0, 1, 0})
	_, err = repo.AddChunks(ctx, again)
	require.NoError(t, err)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)

	got, err := repo.GetChunk(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, got.Vector)
}

func TestAddChunks_DimensionEnforced(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddChunks(ctx, testRecord("a.md", 0, []float32{1, 0, 0}))
	require.NoError(t, err)

	_, err = repo.AddChunks(ctx, testRecord("b.md", 0, []float32{1, 0}))
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	_, err = repo.AddChunks(ctx, testRecord("c.md", 0, nil))
	assert.ErrorIs(t, err, storage.ErrEmptyVector)
}

func TestUpdateChunks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := testRecord("rm0041.md", 0, []float32{1, 0, 0})
	_, err := repo.AddChunks(ctx, record)
	require.NoError(t, err)

	t.Run("rewrites vector", func(t *testing.T) {
		record.Vector = []float32{0.5, 0.5, 0.5, 0.5}
		_, err := repo.UpdateChunks(ctx, record)
		require.NoError(t, err)

		got, err := repo.GetChunk(ctx, record.Id)
		require.NoError(t, err)
		assert.Len(t, got.Vector, 4)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Dimension)
	})

	t.Run("unknown record", func(t *testing.T) {
		missing := testRecord("other.md", 9, []float32{1, 1, 1, 1})
		_, err := repo.UpdateChunks(ctx, missing)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGetChunksBySource(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Inserted out of order; retrieval must sort by chunk index.
	_, err := repo.AddChunks(ctx,
		testRecord("rm0041.md", 2, []float32{0, 0, 1}),
		testRecord("rm0041.md", 0, []float32{1, 0, 0}),
		testRecord("rm0041.md", 1, []float32{0, 1, 0}),
		testRecord("rm0041x.md", 0, []float32{1, 1, 0}),
	)
	require.NoError(t, err)

	records, err := repo.GetChunksBySource(ctx, "rm0041.md")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, i, record.Index)
		assert.Equal(t, "rm0041.md", record.Source)
	}
}

func TestDeleteDocument(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddChunks(ctx,
		testRecord("rm0041.md", 0, []float32{1, 0, 0}),
		testRecord("rm0041.md", 1, []float32{0, 1, 0}),
		testRecord("rm0008.md", 0, []float32{0, 0, 1}),
	)
	require.NoError(t, err)

	deleted, err := repo.DeleteDocument(ctx, "rm0041.md")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)
	assert.Equal(t, 1, stats.Documents)

	t.Run("unknown source", func(t *testing.T) {
		deleted, err := repo.DeleteDocument(ctx, "missing.md")
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestListDocuments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddChunks(ctx,
		testRecord("rm0041.md", 0, []float32{1, 0, 0}),
		testRecord("rm0041.md", 1, []float32{0, 1, 0}),
		testRecord("an4776.md", 0, []float32{0, 0, 1}),
	)
	require.NoError(t, err)

	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "an4776.md", docs[0].Source)
	assert.Equal(t, 1, docs[0].Chunks)
	assert.Equal(t, "rm0041.md", docs[1].Source)
	assert.Equal(t, 2, docs[1].Chunks)
	assert.False(t, docs[1].InsertedAt.IsZero())
}

func TestFindSimilar(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := testRecord("rm0041.md", 0, []float32{1, 0, 0})
	b := testRecord("rm0041.md", 1, []float32{0.6, 0.8, 0})
	c := testRecord("an4776.md", 0, []float32{0, 1, 0})
	c.Metadata = map[string]string{"device": "stm32f1"}
	_, err := repo.AddChunks(ctx, a, b, c)
	require.NoError(t, err)

	t.Run("ordered by similarity", func(t *testing.T) {
		candidates, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 10, nil)
		require.NoError(t, err)
		require.Len(t, candidates, 3)

		assert.Equal(t, a.Text, candidates[0].Text)
		assert.Equal(t, b.Text, candidates[1].Text)
		assert.Equal(t, c.Text, candidates[2].Text)
		for i, candidate := range candidates {
			assert.Equal(t, i, candidate.OriginalRank)
			assert.GreaterOrEqual(t, candidates[0].Score, candidate.Score)
		}
	})

	t.Run("limit", func(t *testing.T) {
		candidates, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 2, nil)
		require.NoError(t, err)
		assert.Len(t, candidates, 2)
	})

	t.Run("provenance metadata", func(t *testing.T) {
		candidates, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 1, nil)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "rm0041.md", candidates[0].Metadata["source"])
		assert.Equal(t, "Registers", candidates[0].Metadata["section"])
	})

	t.Run("source filter", func(t *testing.T) {
		candidates, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 10,
			map[string]string{"source": "an4776.md"})
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, c.Text, candidates[0].Text)
	})

	t.Run("user metadata filter", func(t *testing.T) {
		candidates, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 10,
			map[string]string{"device": "stm32f1"})
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, c.Text, candidates[0].Text)
	})

	t.Run("no match", func(t *testing.T) {
		candidates, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 10,
			map[string]string{"device": "stm32f4"})
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := repo.FindSimilar(ctx, []float32{1, 0}, 10, nil)
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})
}

func TestIterateChunks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddChunks(ctx,
		testRecord("rm0041.md", 0, []float32{1, 0, 0}),
		testRecord("rm0041.md", 1, []float32{0, 1, 0}),
	)
	require.NoError(t, err)

	var seen int
	err = repo.IterateChunks(ctx, func(record *core.ChunkRecord) error {
		seen++
		assert.NotEmpty(t, record.Text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestStats_Empty(t *testing.T) {
	repo := newTestRepo(t)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Dimension)
}
