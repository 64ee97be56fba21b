package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. It backs tests and keyless
// local runs; contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	name    string
}

func NewMemoryStore(collectionName string) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		name:    collectionName,
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return nil
}

// Search scores every record by cosine similarity and returns the topK best.
func (s *MemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return []Result{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.records))
	for _, rec := range s.records {
		results = append(results, Result{
			Text:     rec.Text,
			Metadata: rec.Metadata,
			Score:    cosineSimilarity(embedding, rec.Embedding),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryStore) Name() string { return s.name }

func (s *MemoryStore) Close() error { return nil }

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
