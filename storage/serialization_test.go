package storage

import (
	"testing"
	"time"

	"github.com/poiesic/refdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalID_RoundTrip(t *testing.T) {
	ids := []core.ID{0, 1, 255, 65536, core.IDFromContent("AFIO_MAPR")}

	for _, id := range ids {
		data := MarshalID(id)
		decoded, err := UnmarshalID(data)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestUnmarshalID_Truncated(t *testing.T) {
	data := MarshalID(core.ID(1 << 40))
	_, err := UnmarshalID(data[:1])
	assert.Error(t, err)
}

func TestMarshalChunkRecord_RoundTrip(t *testing.T) {
	record := &core.ChunkRecord{
		Id:      core.IDFromContent("test chunk"),
		Source:  "rm0041.md",
		Section: "AFIO registers",
		Page:    112,
		Index:   3,
		Text:    "REGISTER DEFINITION: AFIO_MAPR - Complete bit field specification\nbody",
		Vector:  []float32{0.1, -0.5, 0.99},
		Metadata: map[string]string{
			"device": "stm32f1",
			"rev":    "6",
		},
		InsertedAt: time.Date(2026, 3, 14, 9, 26, 53, 589000, time.UTC),
	}

	data := MarshalChunkRecord(record)
	decoded, err := UnmarshalChunkRecord(data)
	require.NoError(t, err)

	assert.Equal(t, record.Id, decoded.Id)
	assert.Equal(t, record.Source, decoded.Source)
	assert.Equal(t, record.Section, decoded.Section)
	assert.Equal(t, record.Page, decoded.Page)
	assert.Equal(t, record.Index, decoded.Index)
	assert.Equal(t, record.Text, decoded.Text)
	assert.Equal(t, record.Vector, decoded.Vector)
	assert.Equal(t, record.Metadata, decoded.Metadata)
	// Timestamps survive with microsecond precision; the zone does not.
	assert.True(t, record.InsertedAt.Equal(decoded.InsertedAt))
}

func TestMarshalChunkRecord_EmptyCollections(t *testing.T) {
	record := &core.ChunkRecord{
		Id:     42,
		Source: "doc.md",
	}

	decoded, err := UnmarshalChunkRecord(MarshalChunkRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record.Id, decoded.Id)
	assert.Empty(t, decoded.Vector)
	assert.Empty(t, decoded.Metadata)
}

func TestUnmarshalChunkRecord_Corrupted(t *testing.T) {
	_, err := UnmarshalChunkRecord([]byte{0xff})
	assert.Error(t, err)
}
