package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// ChromaStore talks to a running Chroma server using the v2 API.
type ChromaStore struct {
	client     chromago.Client
	collection chromago.Collection
	name       string
}

// NewChromaStore connects to the Chroma server and gets or creates the named
// collection. An empty url keeps the client's default address.
func NewChromaStore(ctx context.Context, url, collectionName string) (*ChromaStore, error) {
	var client chromago.Client
	var err error
	if url != "" {
		client, err = chromago.NewHTTPClient(chromago.WithBaseURL(url))
	} else {
		client, err = chromago.NewHTTPClient()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Document chunks for RAG"),
			),
		),
	)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("STORE: Failed to close chroma client: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to get or create collection %q: %w", collectionName, err)
	}

	log.Printf("STORE: Connected to chroma collection '%s'", collectionName)
	return &ChromaStore{client: client, collection: collection, name: collectionName}, nil
}

// Upsert writes all records in a single call; existing IDs are replaced.
func (s *ChromaStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]chromago.DocumentID, 0, len(records))
	texts := make([]string, 0, len(records))
	embeds := make([]embeddings.Embedding, 0, len(records))
	metadatas := make([]chromago.DocumentMetadata, 0, len(records))
	for _, rec := range records {
		ids = append(ids, chromago.DocumentID(rec.ID))
		texts = append(texts, rec.Text)
		embeds = append(embeds, embeddings.NewEmbeddingFromFloat32(rec.Embedding))
		attrs := make([]*chromago.MetaAttribute, 0, len(rec.Metadata))
		for k, v := range rec.Metadata {
			attrs = append(attrs, chromago.NewStringAttribute(k, v))
		}
		metadatas = append(metadatas, chromago.NewDocumentMetadata(attrs...))
	}

	err := s.collection.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embeds...),
		chromago.WithMetadatas(metadatas...),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %d records to chromadb: %w", len(records), err)
	}
	return nil
}

// Search returns up to topK chunks ranked by the server.
func (s *ChromaStore) Search(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	query := embeddings.NewEmbeddingFromFloat32(embedding)

	results, err := s.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(query),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	out := []Result{}
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return out, nil
	}

	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		var metadata map[string]string
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			metadata = metadataToMap(metadataGroups[0][i])
		}
		out = append(out, Result{Text: doc.ContentString(), Metadata: metadata})
	}
	return out, nil
}

func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

func (s *ChromaStore) Name() string { return s.name }

func (s *ChromaStore) Close() error { return s.client.Close() }

// metadataToMap converts chroma metadata to a plain string map. The
// DocumentMetadata type exposes no accessor for all values, so it goes
// through JSON.
func metadataToMap(metadata chromago.DocumentMetadata) map[string]string {
	if metadata == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("STORE: Could not marshal chroma metadata: %v", err)
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		log.Printf("STORE: Could not unmarshal chroma metadata: %v", err)
		return nil
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
