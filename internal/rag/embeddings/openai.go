package embeddings

import (
	"context"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// OpenAIModel is an embedding client for the OpenAI API.
type OpenAIModel struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIModel creates an OpenAIModel for the named embedding model.
func NewOpenAIModel(modelName, apiKey string, dims int) (*OpenAIModel, error) {
	config := openai.DefaultConfig(apiKey)
	client := openai.NewClientWithConfig(config)
	return &OpenAIModel{client: client, model: modelName, dims: dims}, nil
}

// Embed generates one embedding per input text via a single batched request.
func (m *OpenAIModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(m.model),
	}

	resp, err := m.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "openai embedding request failed")
	}
	if len(resp.Data) != len(texts) {
		return nil, ragerr.Newf(ragerr.CodeProvider,
			"openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}

	if err := verifyDimensions(vectors, m.dims); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimensions returns the configured vector length.
func (m *OpenAIModel) Dimensions() int {
	return m.dims
}

var _ interfaces.EmbeddingModel = (*OpenAIModel)(nil)
