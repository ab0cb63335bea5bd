// Package index provides the in-memory vector index used for semantic
// item retrieval. The index holds one flat generation of normalized
// embeddings and is rebuilt wholesale whenever the item corpus changes.
package index
