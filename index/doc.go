// Package index provides the in-memory retrieval indices.
//
// Both indices address chunks by row number: rows are appended in corpus
// position order, so row i in the dense index, row i in the sparse index,
// and entry i of the engine's metadata table all describe the same chunk.
// The indices are rebuilt from a position-ordered storage scan at startup
// and appended to after each ingestion batch.
//
//   - DenseIndex: flat inner-product scan over unit-normalized embeddings
//   - SparseIndex: Okapi BM25 over Tokenize output
//
// Tokenize is exported because the sparse index is only correct when build
// and query tokenization are identical.
package index
