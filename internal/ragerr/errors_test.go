package ragerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeProvider, "milvus upsert failed")

	require.Error(t, err)
	assert.Equal(t, CodeProvider, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "PROVIDER")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeProvider, "ignored"))
}

func TestGetCodeThroughFmtChain(t *testing.T) {
	inner := Newf(CodeDimensionMismatch, "vector has %d dimensions, collection expects %d", 100, 768)
	outer := fmt.Errorf("ingest failed: %w", inner)

	assert.Equal(t, CodeDimensionMismatch, GetCode(outer))
	assert.True(t, HasCode(outer, CodeDimensionMismatch))
	assert.False(t, HasCode(outer, CodeConfiguration))
}

func TestGetCodePlainError(t *testing.T) {
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
	assert.Equal(t, Code(""), GetCode(nil))
}
