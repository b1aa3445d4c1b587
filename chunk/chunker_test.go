package chunk

import (
	"strings"
	"testing"

	"github.com/poiesic/refdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunker(t *testing.T, opts ...ConfigOption) *Chunker {
	t.Helper()
	chunker, err := NewChunker(wordTokenizer{}, NewConfig(opts...))
	require.NoError(t, err)
	return chunker
}

func TestNewChunker(t *testing.T) {
	t.Run("nil tokenizer", func(t *testing.T) {
		_, err := NewChunker(nil, DefaultConfig())
		assert.Equal(t, ErrTokenizerRequired, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewChunker(wordTokenizer{}, NewConfig(WithChunkSize(0)))
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		chunker, err := NewChunker(wordTokenizer{}, DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, chunker)
	})
}

func TestChunkText_RegisterDefinitionDocument(t *testing.T) {
	chunker := newTestChunker(t)

	doc := `# AFIO_MAPR

AF remap and debug I/O configuration register.

Address offset: 0x1C
Reset value: 0x0000

| Bits | Field | Description |
|------|-------|-------------|
| 2 | SPI1_REMAP | SPI1 remapping |

Bit 2 SPI1_REMAP: set and cleared by software.
`

	chunks := chunker.ChunkText(doc, "rm0041.md", nil)

	require.Len(t, chunks, 1)
	chunk := chunks[0]
	assert.Equal(t, core.ChunkRegisterDefinition, chunk.Kind)
	assert.Contains(t, chunk.Title, "REGISTER DEFINITION:")
	assert.Contains(t, chunk.Text, "REGISTER DEFINITION: AFIO_MAPR")
	assert.Equal(t, "AFIO_MAPR", chunk.Section)
	assert.Equal(t, "rm0041.md", chunk.Source)
}

func TestChunkText_HeadingPrependedToEveryChunk(t *testing.T) {
	chunker := newTestChunker(t, WithChunkSize(12), WithChunkOverlap(0))

	var b strings.Builder
	b.WriteString("# Clock tree\n\n")
	for i := 0; i < 10; i++ {
		b.WriteString("the system clock is derived from one of three sources\n\n")
	}

	chunks := chunker.ChunkText(b.String(), "doc.md", nil)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.True(t, strings.HasPrefix(chunk.Body, "# Clock tree\n\n"), "chunk %d missing heading context", chunk.Index)
		assert.LessOrEqual(t, chunk.TokenLen, 12, "chunk %d over budget", chunk.Index)
	}
}

func TestChunkText_DropsTOCSections(t *testing.T) {
	chunker := newTestChunker(t)

	doc := "# Contents\n" +
		"Introduction . . . . . . . . . . 12\n" +
		"GPIO registers . . . . . . . . . 34\n" +
		"# Introduction\n" +
		"This reference manual targets application developers and provides complete information on the microcontroller memory and peripherals.\n"

	chunks := chunker.ChunkText(doc, "rm0041.md", nil)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Introduction", chunks[0].Section)
}

func TestChunkText_EmptyDocument(t *testing.T) {
	chunker := newTestChunker(t)

	assert.Empty(t, chunker.ChunkText("", "empty.md", nil))
	assert.Empty(t, chunker.ChunkText("\n\n  \n", "blank.md", nil))
}

func TestChunkText_Deterministic(t *testing.T) {
	chunker := newTestChunker(t, WithChunkSize(20), WithChunkOverlap(6))

	var b strings.Builder
	b.WriteString("# GPIO functional description\n\n")
	for i := 0; i < 8; i++ {
		b.WriteString("each of the general purpose io ports has two 32 bit configuration registers\n\n")
	}
	doc := b.String()
	meta := map[string]string{"rev": "6"}

	first := chunker.ChunkText(doc, "rm0041.md", meta)
	second := chunker.ChunkText(doc, "rm0041.md", meta)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Metadata, second[i].Metadata)
	}
}

func TestChunkText_MetadataCopiedPerChunk(t *testing.T) {
	chunker := newTestChunker(t, WithChunkSize(10), WithChunkOverlap(0))

	doc := "# A\n\none two three four five six seven eight nine ten eleven twelve\n"
	meta := map[string]string{"device": "stm32f1"}

	chunks := chunker.ChunkText(doc, "doc.md", meta)

	require.Greater(t, len(chunks), 1)
	chunks[0].Metadata["device"] = "mutated"
	assert.Equal(t, "stm32f1", chunks[1].Metadata["device"])
	assert.Equal(t, "stm32f1", meta["device"])
}

func TestChunkPages(t *testing.T) {
	chunker := newTestChunker(t, WithChunkSize(50), WithChunkOverlap(4))

	pages := []Page{
		{Number: 1, Text: "first page alpha beta gamma delta epsilon"},
		{Number: 2, Text: "second page zeta eta theta iota kappa"},
	}

	chunks := chunker.ChunkPages(pages, "manual.pdf", nil)

	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Empty(t, chunks[0].Section)

	// Overlap crosses page boundaries.
	assert.True(t, strings.HasPrefix(chunks[1].Text, overlapMarker+" delta epsilon"))
	assert.True(t, strings.HasSuffix(chunks[0].Text, "second page "+overlapMarker))
}

func TestChunkText_OverlapCrossesSectionBoundaries(t *testing.T) {
	chunker := newTestChunker(t, WithChunkSize(50), WithChunkOverlap(4))

	doc := "# First section\n\nalpha beta gamma delta epsilon\n\n# Second section\n\nzeta eta theta iota kappa\n"

	chunks := chunker.ChunkText(doc, "doc.md", nil)

	require.Len(t, chunks, 2)
	assert.Equal(t, "First section", chunks[0].Section)
	assert.Equal(t, "Second section", chunks[1].Section)
	assert.True(t, strings.HasPrefix(chunks[1].Text, overlapMarker+" delta epsilon"))
}
