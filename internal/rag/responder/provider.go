package responder

import (
	"context"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// NewProvider is a factory returning a DialogueProvider for the given
// generative backend.
func NewProvider(ctx context.Context, provider, model, apiKey, baseURL string) (interfaces.DialogueProvider, error) {
	switch provider {
	case "gemini":
		return NewGeminiProvider(ctx, model, apiKey)
	case "openai":
		return NewOpenAIProvider(model, apiKey)
	case "ollama":
		return NewOllamaProvider(model, baseURL)
	default:
		return nil, ragerr.Newf(ragerr.CodeConfiguration, "unsupported LLM provider: %s", provider)
	}
}
