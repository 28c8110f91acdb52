package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"docqa/internal/rag/schema"
	"docqa/internal/ragerr"
)

// Schema fields shared by every vector store collection.
const (
	FieldID         = "id"
	FieldEmbedding  = "embedding"
	FieldText       = "text"
	FieldSource     = "source_document_name"
	FieldTimestamp  = "timestamp"
	FieldDimensions = "dimensions"
)

// CollectionName returns the canonical collection name for a
// dimensionality. Callers may rely on this convention for cross-run
// persistence.
func CollectionName(dims int) string {
	return fmt.Sprintf("rag-documents-%dd", dims)
}

// collectionDims recovers the dimensionality encoded in a collection name.
func collectionDims(collection string) (int, error) {
	var dims int
	if _, err := fmt.Sscanf(collection, "rag-documents-%dd", &dims); err != nil || dims <= 0 {
		return 0, ragerr.Newf(ragerr.CodeConfiguration, "malformed collection name: %s", collection)
	}
	return dims, nil
}

// checkVectorDims validates a vector against the collection's dimensionality.
func checkVectorDims(collection string, vector []float32) error {
	dims, err := collectionDims(collection)
	if err != nil {
		return err
	}
	if len(vector) != dims {
		return ragerr.Newf(ragerr.CodeDimensionMismatch,
			"vector has %d dimensions, collection %s expects %d", len(vector), collection, dims)
	}
	return nil
}

// cosineSimilarity computes the cosine similarity of two equal-length
// vectors. Zero vectors yield a similarity of 0.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// sortMatches orders matches by descending score, ties broken by
// RecordID ascending.
func sortMatches(matches []schema.Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.RecordID < matches[j].Record.RecordID
	})
}
