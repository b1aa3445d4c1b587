// Package ingestion provides pipeline orchestration for turning source
// documents into embedded chunk records.
//
// The Pipeline type manages the ingestion workflow for a document:
//   - Reading the source (markdown, plain text, or PDF)
//   - Chunking and annotating the content
//   - Generating embeddings in batch
//   - Replacing any previous chunks of the same document in storage
//
// Multiple documents are ingested concurrently using a worker pool.
// Within one document, processing is sequential so that chunk order and
// overlap stitching stay deterministic.
package ingestion
