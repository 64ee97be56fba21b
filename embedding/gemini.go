package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiService embeds text with Google's embedding models through the
// genai SDK.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService wraps an existing genai client. Model falls back to
// gemini-embedding-001 when unset.
func NewGeminiService(client *genai.Client, model string) *GeminiService {
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &GeminiService{client: client, model: model}
}

func (s *GeminiService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.Text(t)...)
	}

	resp, err := s.client.Models.EmbedContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content call failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (s *GeminiService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *GeminiService) ModelName() string { return s.model }
