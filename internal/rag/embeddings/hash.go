package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"docqa/internal/rag/interfaces"
)

// HashModel is a deterministic, dependency-free embedding model. Each
// word is hashed into a bucket of the vector and the result is
// L2-normalized, giving a bag-of-words representation whose cosine
// similarity tracks term overlap. It backs offline mode and tests;
// semantic quality is not a goal.
type HashModel struct {
	dims int
}

// NewHashModel creates a HashModel producing vectors of the given length.
func NewHashModel(dims int) *HashModel {
	if dims <= 0 {
		dims = 128
	}
	return &HashModel{dims: dims}
}

// Embed generates one vector per input text. Identical text always
// yields an identical vector.
func (m *HashModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.textToVector(text)
	}
	return vectors, nil
}

// Dimensions returns the configured vector length.
func (m *HashModel) Dimensions() int {
	return m.dims
}

func (m *HashModel) textToVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%m.dims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

var _ interfaces.EmbeddingModel = (*HashModel)(nil)
