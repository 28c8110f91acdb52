package schema

import (
	"fmt"
	"time"
)

// Metadata keys persisted alongside every vector record.
const (
	// MetadataKeyText holds the chunk's text content.
	MetadataKeyText = "text"
	// MetadataKeySource holds the display name of the source document.
	MetadataKeySource = "source_document_name"
	// MetadataKeyTimestamp holds the unix time the record was written.
	MetadataKeyTimestamp = "timestamp"
	// MetadataKeyDimensions holds the embedding dimensionality of the record.
	MetadataKeyDimensions = "dimensions"
)

// Chunk is a contiguous window of a document's extracted text.
// Consecutive chunks overlap by the splitter's configured overlap,
// except possibly the final chunk, which may be shorter.
type Chunk struct {
	// Text is the window's content.
	Text string

	// StartOffset is the rune offset of the window within the full text.
	StartOffset int

	// Length is the window length in runes.
	Length int

	// SequenceIndex is the chunk's position within its document, from 0.
	SequenceIndex int
}

// IndexRecord is the persisted (id, vector, metadata) triple held by a
// vector store collection.
type IndexRecord struct {
	// RecordID is deterministic per document and chunk position, so
	// re-ingesting the same document overwrites rather than duplicates.
	RecordID string

	// Vector is the chunk's embedding. Never mutated after creation.
	Vector []float32

	// Metadata carries at minimum text, source_document_name, timestamp
	// and dimensions.
	Metadata map[string]interface{}
}

// Text returns the record's chunk text from metadata, or "" when absent.
func (r IndexRecord) Text() string {
	if t, ok := r.Metadata[MetadataKeyText].(string); ok {
		return t
	}
	return ""
}

// Match pairs a retrieved record with its cosine similarity score.
type Match struct {
	Record IndexRecord
	Score  float32
}

// RecordID builds the deterministic record id "<sourceName>_<seq>".
func RecordID(sourceName string, seq int) string {
	return fmt.Sprintf("%s_%d", sourceName, seq)
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a conversation session's ordered history.
type Turn struct {
	Role             Role      `json:"role"`
	Content          string    `json:"content"`
	DetectedLanguage string    `json:"detected_language,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// ProcessedDocument is the per-session bookkeeping entry for an ingested
// document, keyed by content hash. It exists to avoid redundant
// re-ingestion within a session and for user-facing reporting; the
// vector store, not this record, is the source of truth for what is
// searchable.
type ProcessedDocument struct {
	DisplayName string    `json:"display_name"`
	ChunkCount  int       `json:"chunk_count"`
	ProcessedAt time.Time `json:"processed_at"`
	Dimensions  int       `json:"dimensions"`
}
