package session

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/rag/schema"
	"docqa/internal/ragerr"
)

// State is the explicit per-conversation state: an opaque session id,
// the ordered turn history, and the processed-document bookkeeping.
// All access is mutex-guarded so concurrent pipeline calls on the same
// state are safe.
type State struct {
	mu        sync.Mutex
	sessionID string
	turns     []schema.Turn
	processed map[string]schema.ProcessedDocument
}

// NewState creates a State with a fresh session id and empty history.
func NewState() *State {
	return &State{
		sessionID: uuid.New().String(),
		processed: make(map[string]schema.ProcessedDocument),
	}
}

// ID returns the opaque session id, stable for the lifetime of the
// state.
func (s *State) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// RecordTurn appends a turn to the history.
func (s *State) RecordTurn(role schema.Role, content, detectedLanguage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, schema.Turn{
		Role:             role,
		Content:          content,
		DetectedLanguage: detectedLanguage,
		Timestamp:        time.Now(),
	})
}

// Turns returns a copy of the turn history.
func (s *State) Turns() []schema.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// ProcessedDoc looks up the bookkeeping entry for a content hash.
func (s *State) ProcessedDoc(contentHash string) (schema.ProcessedDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.processed[contentHash]
	return rec, ok
}

// MarkProcessed records that a document was ingested in this session.
func (s *State) MarkProcessed(contentHash string, rec schema.ProcessedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[contentHash] = rec
}

// ProcessedDocs returns a copy of the processed-document map.
func (s *State) ProcessedDocs() map[string]schema.ProcessedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]schema.ProcessedDocument, len(s.processed))
	for k, v := range s.processed {
		out[k] = v
	}
	return out
}

// Reset clears the turn history and the processed-document map. The
// session id is kept: it identifies the interactive session, not the
// conversation memory.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.processed = make(map[string]schema.ProcessedDocument)
}

// ExportConfig captures the embedding configuration echoed into a
// snapshot.
type ExportConfig struct {
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
}

// snapshot is the self-describing export document.
type snapshot struct {
	SessionID          string                              `json:"session_id"`
	Turns              []schema.Turn                       `json:"turns"`
	ProcessedDocuments map[string]schema.ProcessedDocument `json:"processed_documents"`
	Configuration      ExportConfig                        `json:"configuration"`
	ExportTimestamp    time.Time                           `json:"export_timestamp"`
}

// Export writes a JSON snapshot of the session to w.
func (s *State) Export(w io.Writer, cfg ExportConfig) error {
	s.mu.Lock()
	snap := snapshot{
		SessionID:          s.sessionID,
		Turns:              append([]schema.Turn(nil), s.turns...),
		ProcessedDocuments: make(map[string]schema.ProcessedDocument, len(s.processed)),
		Configuration:      cfg,
		ExportTimestamp:    time.Now(),
	}
	for k, v := range s.processed {
		snap.ProcessedDocuments[k] = v
	}
	s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return ragerr.Wrap(err, ragerr.CodeProvider, "failed to serialize session snapshot")
	}
	return nil
}
