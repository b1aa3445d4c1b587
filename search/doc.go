// Package search implements the query-side refinement pipeline.
//
// A query runs through up to five stages: candidate expansion, vector
// retrieval, optional cross-encoder reranking, optional exact-identifier
// keyword boosting, and truncation to the requested result count. The
// boost stage always runs after reranking so that identifier matches can
// override the reranker's ordering.
package search
