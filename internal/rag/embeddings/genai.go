package embeddings

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// GoogleModel is an embedding client for the Google GenAI API.
type GoogleModel struct {
	model *genai.EmbeddingModel
	dims  int
}

// NewGoogleModel creates a GoogleModel for the named embedding model.
func NewGoogleModel(modelName, apiKey string, dims int) (*GoogleModel, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to create genai client")
	}

	return &GoogleModel{
		model: client.EmbeddingModel(modelName),
		dims:  dims,
	}, nil
}

// Embed generates one embedding per input text via a batched request.
func (m *GoogleModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := m.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := m.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "genai batch embedding failed")
	}
	if len(res.Embeddings) != len(texts) {
		return nil, ragerr.Newf(ragerr.CodeProvider,
			"genai returned %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, emb := range res.Embeddings {
		vectors = append(vectors, emb.Values)
	}

	if err := verifyDimensions(vectors, m.dims); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimensions returns the configured vector length.
func (m *GoogleModel) Dimensions() int {
	return m.dims
}

var _ interfaces.EmbeddingModel = (*GoogleModel)(nil)
