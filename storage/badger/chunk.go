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


package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/refdex/core"
	"github.com/poiesic/refdex/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close closes the underlying backend.
func (r *ChunkRepository) Close() error {
	return r.backend.Close()
}

// AddChunks adds one or more chunk records to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dimension, err := r.readDimension(tx)
		if err != nil {
			return err
		}

		for _, record := range records {
			if len(record.Vector) == 0 {
				return storage.ErrEmptyVector
			}
			if dimension == 0 {
				dimension = len(record.Vector)
				if err := r.writeDimension(tx, dimension); err != nil {
					return err
				}
			}
			if len(record.Vector) != dimension {
				return storage.ErrDimensionMismatch
			}

			if record.InsertedAt.IsZero() {
				record.InsertedAt = time.Now().UTC()
			}

			key := makeChunkRecordKey(record.Id)
			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}

			sourceKey := makeChunkSourceKey(record.Source, record.Id)
			if err := tx.Set(sourceKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// UpdateChunks rewrites existing chunk records in place.
// The index dimension follows the rewritten vectors, so a re-embedding
// pass must cover every stored chunk.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if len(record.Vector) == 0 {
				return storage.ErrEmptyVector
			}

			key := makeChunkRecordKey(record.Id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}

			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}
			if err := r.writeDimension(tx, len(record.Vector)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// GetChunk retrieves a single chunk record by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.ChunkRecord, error) {
	var record *core.ChunkRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.readChunkRecord(tx, makeChunkRecordKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// GetChunksBySource retrieves all chunk records of one document, ordered
// by chunk index.
func (r *ChunkRepository) GetChunksBySource(ctx context.Context, source string) ([]*core.ChunkRecord, error) {
	var records []*core.ChunkRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := r.sourceChunkIDs(tx, source)
		if err != nil {
			return err
		}
		for _, id := range ids {
			record, err := r.readChunkRecord(tx, makeChunkRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b *core.ChunkRecord) int {
		return a.Index - b.Index
	})
	return records, nil
}

// IterateChunks calls fn for every stored chunk record.
func (r *ChunkRepository) IterateChunks(ctx context.Context, fn func(record *core.ChunkRecord) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// DeleteDocument removes every chunk record of the given source.
func (r *ChunkRepository) DeleteDocument(ctx context.Context, source string) (int, error) {
	var deleted int

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := r.sourceChunkIDs(tx, source)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Delete(makeChunkRecordKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkSourceKey(source, id)); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// ListDocuments returns a summary of every ingested document.
func (r *ChunkRepository) ListDocuments(ctx context.Context) ([]storage.DocumentInfo, error) {
	bySource := make(map[string]*storage.DocumentInfo)

	err := r.IterateChunks(ctx, func(record *core.ChunkRecord) error {
		info, ok := bySource[record.Source]
		if !ok {
			info = &storage.DocumentInfo{Source: record.Source, InsertedAt: record.InsertedAt}
			bySource[record.Source] = info
		}
		info.Chunks++
		if record.InsertedAt.Before(info.InsertedAt) {
			info.InsertedAt = record.InsertedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	docs := make([]storage.DocumentInfo, 0, len(bySource))
	for _, info := range bySource {
		docs = append(docs, *info)
	}
	slices.SortFunc(docs, func(a, b storage.DocumentInfo) int {
		return strings.Compare(a.Source, b.Source)
	})
	return docs, nil
}

// FindSimilar finds chunk records similar to the given vector.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, limit int, filters map[string]string) ([]*core.Candidate, error) {
	var candidates []*core.Candidate

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dimension, err := r.readDimension(tx)
		if err != nil {
			return err
		}
		if dimension != 0 && len(vector) != dimension {
			return storage.ErrDimensionMismatch
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	err = r.IterateChunks(ctx, func(record *core.ChunkRecord) error {
		metadata := candidateMetadata(record)
		for key, want := range filters {
			if metadata[key] != want {
				return nil
			}
		}

		candidates = append(candidates, &core.Candidate{
			Text:     record.Text,
			Metadata: metadata,
			Score:    dotProduct(vector, record.Vector),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(candidates, func(a, b *core.Candidate) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for i, candidate := range candidates {
		candidate.OriginalRank = i
	}
	return candidates, nil
}

// Stats reports document count, chunk count, and embedding dimension.
func (r *ChunkRepository) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := &storage.Stats{}
	sources := make(map[string]struct{})

	err := r.IterateChunks(ctx, func(record *core.ChunkRecord) error {
		stats.Chunks++
		sources[record.Source] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	stats.Documents = len(sources)

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		stats.Dimension, err = r.readDimension(tx)
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// candidateMetadata merges a record's user metadata with its provenance
// fields so filters and result projection see a single flat map.
func candidateMetadata(record *core.ChunkRecord) map[string]string {
	metadata := maps.Clone(record.Metadata)
	if metadata == nil {
		metadata = make(map[string]string, 3)
	}
	metadata["source"] = record.Source
	metadata["section"] = record.Section
	if record.Page > 0 {
		metadata["page"] = strconv.Itoa(record.Page)
	}
	return metadata
}

// readChunkRecord reads and unmarshals a chunk record within a transaction.
// Returns nil without error if the key doesn't exist.
func (r *ChunkRepository) readChunkRecord(tx *badger.Txn, key []byte) (*core.ChunkRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ChunkRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalChunkRecord(val)
		return err
	})
	return record, err
}

// sourceChunkIDs collects the IDs indexed under one source document.
func (r *ChunkRepository) sourceChunkIDs(tx *badger.Txn, source string) ([]core.ID, error) {
	var ids []core.ID

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkSourceKey(source)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		err := iter.Item().Value(func(val []byte) error {
			id, err := storage.UnmarshalID(val)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// readDimension reads the index embedding dimension, 0 if unset.
func (r *ChunkRepository) readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get(makeDimensionKey())
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var dimension int
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return storage.ErrSerializationFailed
		}
		dimension = int(binary.BigEndian.Uint64(val))
		return nil
	})
	return dimension, err
}

// writeDimension records the index embedding dimension.
func (r *ChunkRepository) writeDimension(tx *badger.Txn, dimension int) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(dimension))
	return tx.Set(makeDimensionKey(), buf)
}

// dotProduct calculates the dot product of two vectors.
// For normalized embeddings this equals cosine similarity.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
