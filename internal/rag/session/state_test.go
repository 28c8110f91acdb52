package session

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/rag/schema"
)

func TestRecordTurnOrdering(t *testing.T) {
	s := NewState()

	s.RecordTurn(schema.RoleUser, "first question", "en")
	s.RecordTurn(schema.RoleAssistant, "first answer", "")
	s.RecordTurn(schema.RoleUser, "segunda pregunta", "es")

	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, schema.RoleUser, turns[0].Role)
	assert.Equal(t, "en", turns[0].DetectedLanguage)
	assert.Equal(t, schema.RoleAssistant, turns[1].Role)
	assert.Equal(t, "es", turns[2].DetectedLanguage)
}

func TestResetClearsMemoryKeepsID(t *testing.T) {
	s := NewState()
	id := s.ID()

	s.RecordTurn(schema.RoleUser, "question", "en")
	s.MarkProcessed("abc123", schema.ProcessedDocument{DisplayName: "doc.pdf", ChunkCount: 3})
	s.Reset()

	assert.Empty(t, s.Turns())
	assert.Empty(t, s.ProcessedDocs())
	assert.Equal(t, id, s.ID())
}

func TestExportSnapshot(t *testing.T) {
	s := NewState()
	s.RecordTurn(schema.RoleUser, "what is this about?", "en")
	s.RecordTurn(schema.RoleAssistant, "it is about testing", "")
	s.MarkProcessed("hash1", schema.ProcessedDocument{
		DisplayName: "doc.pdf",
		ChunkCount:  3,
		ProcessedAt: time.Now(),
		Dimensions:  768,
	})

	var buf bytes.Buffer
	err := s.Export(&buf, ExportConfig{EmbeddingModel: "text-embedding-004", Dimensions: 768})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, s.ID(), decoded["session_id"])
	assert.Len(t, decoded["turns"], 2)
	assert.Contains(t, decoded["processed_documents"], "hash1")

	cfg, ok := decoded["configuration"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "text-embedding-004", cfg["embedding_model"])
	assert.Equal(t, float64(768), cfg["dimensions"])
	assert.NotEmpty(t, decoded["export_timestamp"])
}
