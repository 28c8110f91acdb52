package vectorstore

import (
	"context"
	"sync"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/internal/ragerr"
)

// MemoryStore is a thread-safe in-memory VectorStore. It backs offline
// mode and tests, and mirrors the persistent store's semantics exactly:
// one collection per dimensionality, overwrite-by-id upserts, cosine
// similarity queries with deterministic tie-breaking.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dims    int
	records map[string]schema.IndexRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

// EnsureCollection creates or returns the collection for the given
// dimensionality.
func (s *MemoryStore) EnsureCollection(ctx context.Context, dimensions int) (string, error) {
	if dimensions <= 0 {
		return "", ragerr.Newf(ragerr.CodeConfiguration, "collection dimensions must be positive, got %d", dimensions)
	}

	name := CollectionName(dimensions)

	s.mu.Lock()
	defer s.mu.Unlock()

	if coll, ok := s.collections[name]; ok {
		if coll.dims != dimensions {
			return "", ragerr.Newf(ragerr.CodeConfiguration,
				"collection %s declares %d dimensions, requested %d", name, coll.dims, dimensions)
		}
		return name, nil
	}

	s.collections[name] = &memoryCollection{
		dims:    dimensions,
		records: make(map[string]schema.IndexRecord),
	}
	return name, nil
}

// Upsert writes records, overwriting by RecordID.
func (s *MemoryStore) Upsert(ctx context.Context, collection string, records []schema.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return ragerr.Newf(ragerr.CodeNotFound, "collection does not exist: %s", collection)
	}

	for _, rec := range records {
		if len(rec.Vector) != coll.dims {
			return ragerr.Newf(ragerr.CodeDimensionMismatch,
				"record %s has %d dimensions, collection %s expects %d",
				rec.RecordID, len(rec.Vector), collection, coll.dims)
		}
	}
	for _, rec := range records {
		coll.records[rec.RecordID] = rec
	}
	return nil
}

// Query returns up to topK matches sorted by descending cosine
// similarity, ties broken by RecordID ascending.
func (s *MemoryStore) Query(ctx context.Context, collection string, vector []float32, topK int) ([]schema.Match, error) {
	if topK <= 0 {
		return nil, ragerr.Newf(ragerr.CodeConfiguration, "topK must be positive, got %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, ragerr.Newf(ragerr.CodeNotFound, "collection does not exist: %s", collection)
	}
	if len(vector) != coll.dims {
		return nil, ragerr.Newf(ragerr.CodeDimensionMismatch,
			"query vector has %d dimensions, collection %s expects %d", len(vector), collection, coll.dims)
	}

	matches := make([]schema.Match, 0, len(coll.records))
	for _, rec := range coll.records {
		matches = append(matches, schema.Match{
			Record: rec,
			Score:  cosineSimilarity(vector, rec.Vector),
		})
	}

	sortMatches(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of records in a collection. Used by tests
// and user-facing reporting.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if coll, ok := s.collections[collection]; ok {
		return len(coll.records)
	}
	return 0
}

// compile-time check to ensure MemoryStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MemoryStore)(nil)
