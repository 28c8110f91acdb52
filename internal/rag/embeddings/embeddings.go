package embeddings

import (
	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// New creates an EmbeddingModel for the given provider. dims is the
// pipeline-wide dimensionality every returned vector must have; a
// provider producing vectors of a different length is rejected at call
// time with a dimension-mismatch error.
func New(provider, model, apiKey, baseURL string, dims int) (interfaces.EmbeddingModel, error) {
	if dims <= 0 {
		return nil, ragerr.Newf(ragerr.CodeConfiguration, "embedding dimensions must be positive, got %d", dims)
	}

	switch provider {
	case "gemini":
		return NewGoogleModel(model, apiKey, dims)
	case "openai":
		return NewOpenAIModel(model, apiKey, dims)
	case "ollama":
		return NewOllamaModel(model, baseURL, dims)
	case "huggingface":
		return NewHuggingFaceModel(model, apiKey, baseURL, dims)
	case "hash":
		return NewHashModel(dims), nil
	default:
		return nil, ragerr.Newf(ragerr.CodeConfiguration, "unsupported embedding provider: %s", provider)
	}
}

// verifyDimensions checks that every vector has the expected length.
func verifyDimensions(vectors [][]float32, dims int) error {
	for i, v := range vectors {
		if len(v) != dims {
			return ragerr.Newf(ragerr.CodeDimensionMismatch,
				"provider returned vector %d with %d dimensions, expected %d", i, len(v), dims)
		}
	}
	return nil
}
