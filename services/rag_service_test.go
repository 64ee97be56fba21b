package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/models"
	"docrag/vectorstore"
)

type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	lastTexts []string
	err       error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastTexts = texts
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

func (f *fakeEmbedder) timesCalled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu          sync.Mutex
	records     []vectorstore.Record
	upsertCalls int
	results     []vectorstore.Result
	lastTopK    int
	upsertErr   error
	searchErr   error
	countErr    error
}

func (f *fakeStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, embedding []float32, topK int) ([]vectorstore.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTopK = topK
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.records), nil
}

func (f *fakeStore) Name() string { return "test-collection" }
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) snapshot() []vectorstore.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]vectorstore.Record(nil), f.records...)
}

func (f *fakeStore) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upsertCalls
}

type fakeGenerator struct {
	mu         sync.Mutex
	calls      int
	lastSystem string
	lastUser   string
	answer     string
	err        error
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) ModelName() string { return "fake-llm" }

func (f *fakeGenerator) timesCalled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestService(t *testing.T) (RAGService, *fakeEmbedder, *fakeStore, *fakeGenerator) {
	t.Helper()
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	generator := &fakeGenerator{answer: "a generated answer"}
	return NewRAGService(embedder, store, generator), embedder, store, generator
}

func TestIndexDocumentEmptyChunks(t *testing.T) {
	svc, embedder, store, _ := newTestService(t)

	count, err := svc.IndexDocument(context.Background(), nil, "doc-1", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, embedder.timesCalled())
	assert.Zero(t, store.upsertCount())
}

func TestIndexDocumentBuildsCompositeKeys(t *testing.T) {
	svc, embedder, store, _ := newTestService(t)

	chunks := []string{"first chunk", "second chunk", "third chunk"}
	count, err := svc.IndexDocument(context.Background(), chunks, "doc-42", map[string]string{"filename": "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.Equal(t, 1, embedder.timesCalled())
	assert.Equal(t, chunks, embedder.lastTexts)
	require.Equal(t, 1, store.upsertCount())

	records := store.snapshot()
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("doc-42_%d", i), rec.ID)
		assert.Equal(t, chunks[i], rec.Text)
		assert.Equal(t, "doc-42", rec.Metadata["document_id"])
		assert.Equal(t, fmt.Sprintf("%d", i), rec.Metadata["chunk_index"])
		assert.Equal(t, "a.txt", rec.Metadata["filename"])
	}
}

func TestIndexDocumentReservedMetadataWins(t *testing.T) {
	svc, _, store, _ := newTestService(t)

	_, err := svc.IndexDocument(context.Background(), []string{"chunk"}, "real-id", map[string]string{
		"document_id": "spoofed",
		"chunk_index": "99",
		"filename":    "kept.txt",
	})
	require.NoError(t, err)

	records := store.snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, "real-id", records[0].Metadata["document_id"])
	assert.Equal(t, "0", records[0].Metadata["chunk_index"])
	assert.Equal(t, "kept.txt", records[0].Metadata["filename"])
}

func TestIndexDocumentEmbedError(t *testing.T) {
	svc, embedder, store, _ := newTestService(t)
	embedder.err = errors.New("embedding api down")

	count, err := svc.IndexDocument(context.Background(), []string{"chunk"}, "doc-1", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "embedding api down")
	assert.Zero(t, count)
	assert.Zero(t, store.upsertCount())
}

func TestIndexDocumentStoreError(t *testing.T) {
	svc, _, store, _ := newTestService(t)
	store.upsertErr = errors.New("store offline")

	count, err := svc.IndexDocument(context.Background(), []string{"chunk"}, "doc-1", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "store offline")
	assert.Zero(t, count)
}

func TestQueryReturnsAnswerAndSources(t *testing.T) {
	svc, _, store, generator := newTestService(t)
	store.results = []vectorstore.Result{
		{Text: "most relevant"},
		{Text: "second"},
		{Text: "third"},
	}

	answer, sources, err := svc.Query(context.Background(), "what is this?", 3)
	require.NoError(t, err)
	assert.Equal(t, "a generated answer", answer)
	assert.Equal(t, []string{"most relevant", "second", "third"}, sources)

	assert.Equal(t, 3, store.lastTopK)
	require.Equal(t, 1, generator.timesCalled())
	assert.Equal(t, systemPrompt, generator.lastSystem)
	assert.Contains(t, generator.lastUser, "Context:\nmost relevant\n\nsecond\n\nthird")
	assert.Contains(t, generator.lastUser, "Question: what is this?")
}

func TestQueryNoMatchesSkipsGeneration(t *testing.T) {
	svc, _, _, generator := newTestService(t)

	answer, sources, err := svc.Query(context.Background(), "anything?", 3)
	require.NoError(t, err)
	assert.Equal(t, noContextAnswer, answer)
	assert.Empty(t, sources)
	assert.Zero(t, generator.timesCalled())
}

func TestQueryPassesTopKThrough(t *testing.T) {
	svc, _, store, _ := newTestService(t)

	_, _, err := svc.Query(context.Background(), "q?", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, store.lastTopK)
}

func TestQueryEmbedError(t *testing.T) {
	svc, embedder, _, generator := newTestService(t)
	embedder.err = errors.New("no embeddings")

	_, _, err := svc.Query(context.Background(), "q?", 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no embeddings")
	assert.Zero(t, generator.timesCalled())
}

func TestQuerySearchError(t *testing.T) {
	svc, _, store, generator := newTestService(t)
	store.searchErr = errors.New("index corrupt")

	_, _, err := svc.Query(context.Background(), "q?", 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "index corrupt")
	assert.Zero(t, generator.timesCalled())
}

func TestQueryGeneratorError(t *testing.T) {
	svc, _, store, generator := newTestService(t)
	store.results = []vectorstore.Result{{Text: "chunk"}}
	generator.err = errors.New("llm unavailable")

	_, _, err := svc.Query(context.Background(), "q?", 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "llm unavailable")
}

func TestStats(t *testing.T) {
	svc, _, store, _ := newTestService(t)
	store.records = []vectorstore.Record{{ID: "a_0"}, {ID: "a_1"}}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.CollectionStats{TotalChunks: 2, CollectionName: "test-collection"}, stats)
}

func TestStatsCountError(t *testing.T) {
	svc, _, store, _ := newTestService(t)
	store.countErr = errors.New("unreachable")

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unreachable")
}
