// Package embedding turns text into vectors through a hosted model API.
package embedding

import "context"

// Service produces embedding vectors for text. EmbedTexts makes a single
// upstream call and returns vectors in input order.
type Service interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}
