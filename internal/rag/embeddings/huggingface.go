package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// HuggingFaceModel is an embedding client for the Hugging Face
// Inference API feature-extraction pipeline.
type HuggingFaceModel struct {
	client  *http.Client
	model   string
	apiKey  string
	baseURL string
	dims    int
}

// NewHuggingFaceModel creates a HuggingFaceModel. An empty baseURL
// defaults to the public inference endpoint.
func NewHuggingFaceModel(modelName, apiKey, baseURL string, dims int) (*HuggingFaceModel, error) {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction/"
	}
	return &HuggingFaceModel{
		client:  &http.Client{},
		model:   modelName,
		apiKey:  apiKey,
		baseURL: baseURL,
		dims:    dims,
	}, nil
}

// Embed generates one embedding per input text.
func (m *HuggingFaceModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]interface{}{
		"inputs":  texts,
		"options": map[string]bool{"wait_for_model": true},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to marshal request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+m.model, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "huggingface request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, ragerr.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, body),
			ragerr.CodeProvider, "huggingface request rejected")
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to decode huggingface response")
	}
	if len(vectors) != len(texts) {
		return nil, ragerr.Newf(ragerr.CodeProvider,
			"huggingface returned %d embeddings for %d texts", len(vectors), len(texts))
	}

	if err := verifyDimensions(vectors, m.dims); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimensions returns the configured vector length.
func (m *HuggingFaceModel) Dimensions() int {
	return m.dims
}

var _ interfaces.EmbeddingModel = (*HuggingFaceModel)(nil)
