package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/ragerr"
)

func TestHashModelDeterministic(t *testing.T) {
	ctx := context.Background()
	m := NewHashModel(64)

	first, err := m.Embed(ctx, []string{"the quick brown fox"})
	require.NoError(t, err)
	second, err := m.Embed(ctx, []string{"the quick brown fox"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHashModelPositionPreserving(t *testing.T) {
	ctx := context.Background()
	m := NewHashModel(64)

	texts := []string{"alpha beta", "gamma delta", "alpha beta"}
	vectors, err := m.Embed(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for _, v := range vectors {
		assert.Len(t, v, m.Dimensions())
	}
	assert.Equal(t, vectors[0], vectors[2])
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestHashModelEmptyText(t *testing.T) {
	ctx := context.Background()
	m := NewHashModel(16)

	vectors, err := m.Embed(ctx, []string{""})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Len(t, vectors[0], 16)
}

func TestNewFactory(t *testing.T) {
	m, err := New("hash", "", "", "", 32)
	require.NoError(t, err)
	assert.Equal(t, 32, m.Dimensions())

	_, err = New("carrier-pigeon", "", "", "", 32)
	require.Error(t, err)
	assert.Equal(t, ragerr.CodeConfiguration, ragerr.GetCode(err))

	_, err = New("hash", "", "", "", 0)
	require.Error(t, err)
	assert.Equal(t, ragerr.CodeConfiguration, ragerr.GetCode(err))
}
