// Package vectorstore holds the embedded document chunks and answers
// similarity searches over them.
package vectorstore

import "context"

// Record is one embedded chunk ready to be written to the index.
type Record struct {
	ID        string
	Embedding []float32
	Text      string
	Metadata  map[string]string
}

// Result is a chunk returned from a similarity search.
type Result struct {
	Text     string
	Metadata map[string]string
	Score    float32
}

// Store is the vector index behind the RAG pipeline. Implementations
// overwrite records whose ID already exists, return results most similar
// first, and report an empty result set rather than an error when nothing
// matches.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, embedding []float32, topK int) ([]Result, error)
	Count(ctx context.Context) (int, error)
	Name() string
	Close() error
}
