package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/refdex/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chkrec"
	chunkSourcePrefix = "chksrc"
	dimensionKey      = "metadim"
)

// makeChunkRecordKey generates a key for a chunk record by ID.
func makeChunkRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:source\x00id
// The NUL terminator keeps "rm0041" from matching keys of "rm0041x".
func makeChunkSourceKey(source string, id core.ID) []byte {
	prefix := chunkSourcePrefix + ":" + source + "\x00"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkSourceKey generates a partial key covering every chunk
// of one source document.
func makePartialChunkSourceKey(source string) []byte {
	return []byte(chunkSourcePrefix + ":" + source + "\x00")
}

// makeDimensionKey returns the key holding the index embedding dimension.
func makeDimensionKey() []byte {
	return []byte(dimensionKey)
}
