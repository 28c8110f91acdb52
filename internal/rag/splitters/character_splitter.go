package splitters

import (
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/internal/ragerr"
)

// CharacterSplitter splits text into fixed-size overlapping rune windows.
type CharacterSplitter struct {
	chunkSize int
	overlap   int
}

// NewCharacterSplitter creates a splitter emitting windows of chunkSize
// runes, with consecutive windows sharing overlap runes. Invalid
// parameters fail here so the pipeline never runs misconfigured.
func NewCharacterSplitter(chunkSize, overlap int) (*CharacterSplitter, error) {
	if chunkSize <= 0 {
		return nil, ragerr.Newf(ragerr.CodeConfiguration, "chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ragerr.Newf(ragerr.CodeConfiguration, "overlap must be in [0, chunk size), got overlap=%d chunk size=%d", overlap, chunkSize)
	}
	return &CharacterSplitter{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Split emits chunks in document order: starting at offset 0, each chunk
// covers [start, start+chunkSize) clipped to the text length, and start
// advances by chunkSize-overlap. Empty text yields zero chunks.
func (s *CharacterSplitter) Split(text string) []schema.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	var chunks []schema.Chunk

	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, schema.Chunk{
			Text:          string(runes[start:end]),
			StartOffset:   start,
			Length:        end - start,
			SequenceIndex: len(chunks),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// compile-time check to ensure CharacterSplitter implements the Splitter interface
var _ interfaces.Splitter = (*CharacterSplitter)(nil)
