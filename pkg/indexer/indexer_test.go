package indexer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docchat/internal/testutil"
	"github.com/xhad/docchat/internal/types"
	"github.com/xhad/docchat/pkg/indexer"
)

func TestIndex(t *testing.T) {
	embedder := &testutil.Embedder{}
	index := &testutil.Index{}
	ix := indexer.New(embedder, index, nil)

	n, err := ix.Index(context.Background(), "/docs/a.txt", []string{"alpha", "  \n ", "beta"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"alpha", "beta"}, embedder.Calls)

	require.Len(t, index.Records, 2)
	first, second := index.Records[0], index.Records[1]
	assert.Equal(t, "alpha", first.Chunk.Text)
	assert.Equal(t, "/docs/a.txt", first.Chunk.SourcePath)
	assert.Equal(t, 0, first.Chunk.Ordinal)
	assert.Equal(t, 2, second.Chunk.Ordinal)
	assert.Equal(t, testutil.LetterVector("alpha"), first.Embedding)

	_, err = uuid.Parse(first.Chunk.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.Chunk.ID, second.Chunk.ID)
}

func TestIndex_EmbeddingFailureStopsFile(t *testing.T) {
	embedder := &testutil.Embedder{EmbedFunc: func(text string) ([]float32, error) {
		if text == "bad" {
			return nil, errors.New("model unavailable")
		}
		return []float32{1}, nil
	}}
	index := &testutil.Index{}
	ix := indexer.New(embedder, index, nil)

	n, err := ix.Index(context.Background(), "/docs/a.txt", []string{"one", "bad", "three"})
	assert.ErrorIs(t, err, types.ErrEmbedding)
	assert.Equal(t, 1, n)
	assert.Len(t, index.Records, 1)
	assert.Equal(t, []string{"one", "bad"}, embedder.Calls)
}

func TestIndex_WriteFailure(t *testing.T) {
	index := &testutil.Index{FailAfter: 1}
	ix := indexer.New(&testutil.Embedder{}, index, nil)

	n, err := ix.Index(context.Background(), "/docs/a.txt", []string{"one", "two", "three"})
	assert.ErrorIs(t, err, types.ErrIndexWrite)
	assert.ErrorIs(t, err, testutil.ErrFake)
	assert.Equal(t, 1, n)
}

func TestIndex_AdapterSentinelNotDoubled(t *testing.T) {
	index := &testutil.Index{AddErr: types.ErrIndexWrite}
	ix := indexer.New(&testutil.Embedder{}, index, nil)

	_, err := ix.Index(context.Background(), "/docs/a.txt", []string{"one"})
	assert.ErrorIs(t, err, types.ErrIndexWrite)
	assert.Equal(t, "failed to index chunk 0 of /docs/a.txt: index write failed", err.Error())
}

func TestIndex_CancelledContext(t *testing.T) {
	embedder := &testutil.Embedder{}
	ix := indexer.New(embedder, &testutil.Index{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := ix.Index(ctx, "/docs/a.txt", []string{"one"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Zero(t, embedder.CallCount())
}
