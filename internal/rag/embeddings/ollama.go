package embeddings

import (
	"context"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// OllamaModel is an embedding client for a local Ollama server.
type OllamaModel struct {
	client *ollama.Client
	model  string
	dims   int
}

// NewOllamaModel creates an OllamaModel. An empty baseURL defaults to
// "http://localhost:11434".
func NewOllamaModel(modelName, baseURL string, dims int) (*OllamaModel, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeConfiguration, "invalid ollama base URL")
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &OllamaModel{
		client: ollama.NewClient(parsedURL, hc),
		model:  modelName,
		dims:   dims,
	}, nil
}

// Embed generates one embedding per input text.
func (m *OllamaModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := m.client.Embed(ctx, &ollama.EmbedRequest{
		Model: m.model,
		Input: texts,
	})
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "ollama embedding request failed")
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, ragerr.Newf(ragerr.CodeProvider,
			"ollama returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb
	}

	if err := verifyDimensions(vectors, m.dims); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimensions returns the configured vector length.
func (m *OllamaModel) Dimensions() int {
	return m.dims
}

var _ interfaces.EmbeddingModel = (*OllamaModel)(nil)
