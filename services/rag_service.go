package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"docrag/embedding"
	"docrag/llm"
	"docrag/models"
	"docrag/vectorstore"
)

// Metadata keys the pipeline writes on every chunk. Caller-supplied values
// under these keys are overwritten.
const (
	metaDocumentID = "document_id"
	metaChunkIndex = "chunk_index"
)

// RAGService defines the ingestion and question answering operations.
type RAGService interface {
	IndexDocument(ctx context.Context, chunks []string, documentID string, metadata map[string]string) (int, error)
	Query(ctx context.Context, question string, topK int) (string, []string, error)
	Stats(ctx context.Context) (*models.CollectionStats, error)
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	embedder  embedding.Service
	store     vectorstore.Store
	generator llm.Generator
}

// NewRAGService creates a new RAG service instance
func NewRAGService(embedder embedding.Service, store vectorstore.Store, generator llm.Generator) RAGService {
	return &ragServiceImpl{
		embedder:  embedder,
		store:     store,
		generator: generator,
	}
}

// IndexDocument embeds the chunks in one batch and upserts them under
// composite keys "<documentID>_<i>". It returns the number of chunks stored.
func (r *ragServiceImpl) IndexDocument(ctx context.Context, chunks []string, documentID string, metadata map[string]string) (int, error) {
	if len(chunks) == 0 {
		log.Printf("SERVICE: Document %s produced no chunks, nothing to index", documentID)
		return 0, nil
	}

	vectors, err := r.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("could not embed %d chunks of document %s: %w", len(chunks), documentID, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch for document %s: %d vectors for %d chunks", documentID, len(vectors), len(chunks))
	}

	records := make([]vectorstore.Record, 0, len(chunks))
	for i, chunk := range chunks {
		meta := make(map[string]string, len(metadata)+2)
		for k, v := range metadata {
			meta[k] = v
		}
		meta[metaDocumentID] = documentID
		meta[metaChunkIndex] = strconv.Itoa(i)

		records = append(records, vectorstore.Record{
			ID:        fmt.Sprintf("%s_%d", documentID, i),
			Embedding: vectors[i],
			Text:      chunk,
			Metadata:  meta,
		})
	}

	if err := r.store.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store %d chunks of document %s: %w", len(records), documentID, err)
	}

	log.Printf("SERVICE: Indexed document %s as %d chunks", documentID, len(records))
	return len(records), nil
}

// Query answers a question from the indexed chunks. When nothing is stored
// for it, a fixed fallback answer is returned without calling the model.
func (r *ragServiceImpl) Query(ctx context.Context, question string, topK int) (string, []string, error) {
	log.Printf("SERVICE: Querying with: '%s' (top_k=%d)", question, topK)

	queryVector, err := r.embedder.EmbedText(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("could not embed question: %w", err)
	}

	results, err := r.store.Search(ctx, queryVector, topK)
	if err != nil {
		return "", nil, fmt.Errorf("failed to search the index: %w", err)
	}

	if len(results) == 0 {
		log.Printf("SERVICE: No relevant chunks found")
		return noContextAnswer, []string{}, nil
	}

	sources := make([]string, 0, len(results))
	for _, res := range results {
		sources = append(sources, res.Text)
	}

	answer, err := r.generator.Generate(ctx, systemPrompt, buildUserPrompt(strings.Join(sources, "\n\n"), question))
	if err != nil {
		return "", nil, fmt.Errorf("could not generate answer: %w", err)
	}

	log.Printf("SERVICE: Answered from %d chunks", len(results))
	return answer, sources, nil
}

// Stats reports the current size of the index.
func (r *ragServiceImpl) Stats(ctx context.Context) (*models.CollectionStats, error) {
	count, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return &models.CollectionStats{
		TotalChunks:    count,
		CollectionName: r.store.Name(),
	}, nil
}
