package splitters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/ragerr"
)

func TestSplitOffsetsAndCount(t *testing.T) {
	s, err := NewCharacterSplitter(1000, 200)
	require.NoError(t, err)

	text := strings.Repeat("a", 2400)
	chunks := s.Split(text)

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 800, chunks[1].StartOffset)
	assert.Equal(t, 1600, chunks[2].StartOffset)
	assert.Equal(t, 1000, chunks[0].Length)
	assert.Equal(t, 1000, chunks[1].Length)
	assert.Equal(t, 800, chunks[2].Length)
	for i, c := range chunks {
		assert.Equal(t, i, c.SequenceIndex)
	}
}

func TestSplitCoverageReconstructsText(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
	}{
		{"exact multiple", strings.Repeat("x", 3000), 1000, 200},
		{"short final chunk", strings.Repeat("y", 2401), 1000, 200},
		{"text shorter than window", "short", 1000, 200},
		{"no overlap", strings.Repeat("z", 97), 10, 0},
		{"multibyte runes", strings.Repeat("日本語テキスト", 40), 50, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewCharacterSplitter(tc.chunkSize, tc.overlap)
			require.NoError(t, err)

			chunks := s.Split(tc.text)
			require.NotEmpty(t, chunks)

			// Concatenating chunks with the overlaps removed must
			// reconstruct the input exactly.
			var sb strings.Builder
			for i, c := range chunks {
				runes := []rune(c.Text)
				if i == 0 {
					sb.WriteString(c.Text)
				} else {
					sb.WriteString(string(runes[tc.overlap:]))
				}
			}
			assert.Equal(t, tc.text, sb.String())
		})
	}
}

func TestSplitOverlapShared(t *testing.T) {
	s, err := NewCharacterSplitter(10, 4)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := s.Split(text)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		shared := len(prev) - (chunks[i].StartOffset - chunks[i-1].StartOffset)
		assert.Equal(t, string(prev[len(prev)-shared:]), string(cur[:shared]))
	}
}

func TestSplitEmptyTextYieldsNoChunks(t *testing.T) {
	s, err := NewCharacterSplitter(1000, 200)
	require.NoError(t, err)
	assert.Empty(t, s.Split(""))
}

func TestNewCharacterSplitterRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -5, 0},
		{"overlap equals chunk size", 100, 100},
		{"overlap exceeds chunk size", 100, 150},
		{"negative overlap", 100, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCharacterSplitter(tc.chunkSize, tc.overlap)
			require.Error(t, err)
			assert.Equal(t, ragerr.CodeConfiguration, ragerr.GetCode(err))
		})
	}
}
