package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docchat/internal/types"
	"github.com/xhad/docchat/pkg/llm"
)

type fakeEmbeddingClient struct {
	calls  [][]string
	result [][]float32
	err    error
}

func (f *fakeEmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	return f.result, f.err
}

func TestNewEmbedderWithConfig(t *testing.T) {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{BaseURL: "http://localhost:1234"})
	assert.NoError(t, err)
	assert.NotNil(t, embedder)
}

func TestEmbed(t *testing.T) {
	client := &fakeEmbeddingClient{result: [][]float32{{0.1, 0.2, 0.3}}}
	embedder := llm.NewEmbedder(client, llm.EmbedderConfig{})

	emb, err := embedder.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, emb)
	assert.Equal(t, [][]string{{"some text"}}, client.calls)
}

func TestEmbed_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeEmbeddingClient
	}{
		{"client error", &fakeEmbeddingClient{err: errors.New("model not found")}},
		{"no embeddings", &fakeEmbeddingClient{result: [][]float32{}}},
		{"empty vector", &fakeEmbeddingClient{result: [][]float32{{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := llm.NewEmbedder(tt.client, llm.EmbedderConfig{})
			_, err := embedder.Embed(context.Background(), "text")
			assert.ErrorIs(t, err, types.ErrEmbedding)
		})
	}
}

func TestEmbed_RateLimitHonoursContext(t *testing.T) {
	client := &fakeEmbeddingClient{result: [][]float32{{1}}}
	embedder := llm.NewEmbedder(client, llm.EmbedderConfig{RateLimit: 0.001})

	_, err := embedder.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = embedder.Embed(ctx, "second")
	assert.ErrorIs(t, err, types.ErrEmbedding)
	assert.Len(t, client.calls, 1)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, llm.EstimateTokens(""))
	assert.Equal(t, 1, llm.EstimateTokens("abc"))
	assert.Equal(t, 2, llm.EstimateTokens("abcdefgh"))
	assert.Equal(t, 1, llm.EstimateTokens("日本語"))
}

func TestTokenCounter(t *testing.T) {
	tc := llm.NewTokenCounter()
	assert.Equal(t, 0, tc.Count(""))
	assert.Greater(t, tc.Count("hello world, this is a sentence"), 0)
}
