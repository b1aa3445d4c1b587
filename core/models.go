package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted chunks.
// It is generated from chunk content so that re-ingesting an unchanged
// document produces identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkKind classifies the structural shape of a chunk.
type ChunkKind int

const (
	// ChunkRegular is ordinary prose or mixed content.
	ChunkRegular ChunkKind = iota + 1
	// ChunkRegisterDefinition is a complete register bit-field specification:
	// a table plus a declared address offset.
	ChunkRegisterDefinition
	// ChunkOverview is a passage that lists many registers without defining them.
	ChunkOverview
)

// String returns a human-readable name for the chunk kind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkRegular:
		return "regular"
	case ChunkRegisterDefinition:
		return "register_definition"
	case ChunkOverview:
		return "overview"
	default:
		return "unknown"
	}
}

// Section is a heading-scoped (or page-scoped) slice of a normalized document.
// Sections are immutable once produced by the splitter.
type Section struct {
	Heading string // heading text, empty for a preamble or a page-scoped section
	Body    string // section body, heading line excluded
	Source  string // source document identifier (usually the file name)
	Page    int    // 1-based page number for page-scoped sources, 0 otherwise
}

// Chunk is a unit-budgeted piece of one Section. It is mutated in place by the
// classifier (Kind, Title, KeyTerms) and the overlap stitcher (Text) before
// being frozen for embedding.
type Chunk struct {
	Body     string    // raw body including heading context, pre-annotation
	TokenLen int       // token length of Body
	Index    int       // ordinal within the document's chunk sequence
	Kind     ChunkKind // set by the classifier
	Title    string    // synthesized title line, empty unless RegisterDefinition
	KeyTerms string    // "[KEY: ...]" prefix line, empty when nothing was found
	Text     string    // final annotated + overlapped text, set by the stitcher
	Source   string    // copied from the owning Section
	Section  string    // owning Section heading
	Page     int       // owning Section page, 0 for heading-scoped sources
	Metadata map[string]string
}

// Candidate wraps a stored chunk's text and metadata during one query.
// Score is mutable; OriginalRank records the pre-rerank retrieval position
// and is used to break score ties.
type Candidate struct {
	Text         string
	Metadata     map[string]string
	Score        float32
	OriginalRank int
}

// RerankBackend selects a cross-encoder reranking implementation.
type RerankBackend string

const (
	// RerankNone disables reranking.
	RerankNone RerankBackend = ""
	// RerankCohere uses the Cohere rerank API.
	RerankCohere RerankBackend = "cohere"
	// RerankLocal uses a local small cross-encoder served over HTTP.
	RerankLocal RerankBackend = "local"
	// RerankLarge uses a local large cross-encoder served over HTTP.
	RerankLarge RerankBackend = "large"
)

// SearchQuery describes a single query against a store.
type SearchQuery struct {
	Text         string
	TopK         int
	Rerank       RerankBackend     // RerankNone disables the rerank stage
	KeywordBoost bool              // enable exact-identifier boost after rerank
	Filters      map[string]string // exact-match metadata predicates, ANDed
}

// SearchResult is the final ranked projection of a Candidate.
type SearchResult struct {
	Score   float32
	Source  string
	Section string
	Page    int
	Text    string
}

// ChunkRecord is the persisted form of a chunk.
type ChunkRecord struct {
	Id         ID
	Source     string // document identifier, used for delete-by-document
	Section    string
	Page       int
	Index      int
	Text       string // annotated + overlapped text, as embedded
	Vector     []float32
	Metadata   map[string]string
	InsertedAt time.Time
}
