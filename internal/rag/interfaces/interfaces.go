package interfaces

import (
	"context"

	"docqa/internal/rag/schema"
)

// Loader is the interface for extracting the full text of a document
// from its raw bytes.
type Loader interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Splitter is the interface for splitting extracted text into chunks.
type Splitter interface {
	Split(text string) []schema.Chunk
}

// EmbeddingModel is the interface for a text embedding model.
// Embed is position-preserving: output[i] is the vector for texts[i],
// and every vector has length exactly Dimensions().
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// VectorStore is the interface for persisting and querying embeddings,
// partitioned into one collection per dimensionality.
type VectorStore interface {
	// EnsureCollection is an idempotent create-or-get for the collection
	// holding vectors of the given dimensionality. It never changes an
	// existing collection's declared dimensionality; a mismatch is a
	// configuration error.
	EnsureCollection(ctx context.Context, dimensions int) (string, error)

	// Upsert writes records, overwriting by RecordID. Re-running an
	// identical upsert leaves the collection in the same final state.
	Upsert(ctx context.Context, collection string, records []schema.IndexRecord) error

	// Query returns up to topK matches sorted by descending cosine
	// similarity, ties broken by RecordID ascending. An empty collection
	// yields zero matches, not an error.
	Query(ctx context.Context, collection string, vector []float32, topK int) ([]schema.Match, error)
}

// Detector classifies free text into a supported language code.
// It never fails: ambiguous, empty or out-of-set input yields the
// configured default language.
type Detector interface {
	Detect(text string) string
}

// Dialogue is one generative conversation. Send threads all prior
// exchanges on this dialogue as context for the new prompt.
type Dialogue interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// DialogueProvider opens new dialogues against a generative backend.
type DialogueProvider interface {
	NewDialogue() Dialogue
}

// ResponseGenerator produces conversational answers, holding one
// dialogue per session id. An empty session id makes a stateless
// one-shot call. Provider failures are absorbed into an error-marked
// reply rather than returned, so the answer slot is always filled.
type ResponseGenerator interface {
	GenerateResponse(ctx context.Context, prompt, sessionID string) string
	Clear(sessionID string)
}
