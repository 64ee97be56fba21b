package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/mistral"
)

// MistralGenerator answers with a Mistral chat model through langchaingo.
type MistralGenerator struct {
	model *mistral.Model
	name  string
}

// NewMistralGenerator creates the Mistral chat client. Model falls back to
// mistral-small-latest when unset.
func NewMistralGenerator(apiKey, model string) (*MistralGenerator, error) {
	if model == "" {
		model = "mistral-small-latest"
	}
	m, err := mistral.New(mistral.WithAPIKey(apiKey), mistral.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create mistral client: %w", err)
	}
	return &MistralGenerator{model: m, name: model}, nil
}

func (g *MistralGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("mistral api call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("mistral returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func (g *MistralGenerator) ModelName() string { return g.name }
