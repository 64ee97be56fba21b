package vectorstore

import (
	"context"
	"fmt"
	"log"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore is an embedded, file-persisted index. It needs no external
// service, which keeps a local deployment to a single process.
type ChromemStore struct {
	collection *chromem.Collection
	name       string
}

// NewChromemStore opens or creates a persistent database under dir and the
// named collection inside it, configured for cosine similarity.
func NewChromemStore(dir, collectionName string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem db at %s: %w", dir, err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", collectionName, err)
	}

	log.Printf("STORE: Opened chromem collection '%s' at %s (%d records)", collectionName, dir, collection.Count())
	return &ChromemStore{collection: collection, name: collectionName}, nil
}

// Upsert writes the records with their precomputed embeddings. chromem
// replaces documents that share an ID.
func (s *ChromemStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	metadatas := make([]map[string]string, 0, len(records))
	contents := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
		vectors = append(vectors, rec.Embedding)
		metadatas = append(metadatas, rec.Metadata)
		contents = append(contents, rec.Text)
	}

	if err := s.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("failed to add %d records to chromem: %w", len(records), err)
	}
	return nil
}

// Search returns up to topK results. chromem rejects result counts larger
// than the collection, so the limit is clamped to the current size.
func (s *ChromemStore) Search(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	if count := s.collection.Count(); topK > count {
		topK = count
	}
	if topK <= 0 {
		return []Result{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromem: %w", err)
	}

	out := make([]Result, 0, len(results))
	for _, res := range results {
		out = append(out, Result{Text: res.Content, Metadata: res.Metadata, Score: res.Similarity})
	}
	return out, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

func (s *ChromemStore) Name() string { return s.name }

func (s *ChromemStore) Close() error { return nil }
