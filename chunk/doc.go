// Package chunk implements the document chunking and annotation engine.
//
// The Chunker type runs the ingestion-side pipeline for one document:
//   - Normalize: strip recurring headers/footers and layout artifacts
//   - Split: divide text into heading-scoped or page-scoped sections
//   - Filter: discard table-of-contents noise
//   - Chunk: recursively split each section into token-budgeted pieces
//   - Classify: detect register definitions and overviews, annotate chunks
//   - Stitch: attach delimited overlap context from neighboring chunks
//
// All stages are pure and synchronous; the package holds no shared mutable
// state, so independent documents can be chunked in parallel.
package chunk
