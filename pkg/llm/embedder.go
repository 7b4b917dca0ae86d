package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/xhad/docchat/internal/types"
	"golang.org/x/time/rate"
)

// EmbeddingClient is the subset of a langchaingo model used for embeddings.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

type EmbedderConfig struct {
	Model     string
	BaseURL   string        // Ollama server URL
	RateLimit float64       // requests per second, 0 for unlimited
	Timeout   time.Duration // per request, 0 for none
}

// Embedder computes one embedding per text.
type Embedder struct {
	config  EmbedderConfig
	client  EmbeddingClient
	limiter *rate.Limiter
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest" // Default Ollama model
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	emb, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model: %w", err)
	}

	return NewEmbedder(emb, config), nil
}

// NewEmbedder wraps an existing embedding client.
func NewEmbedder(client EmbeddingClient, config EmbedderConfig) *Embedder {
	e := &Embedder{
		config: config,
		client: client,
	}
	if config.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return e
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrEmbedding, err)
		}
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	embeddings, err := e.client.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrEmbedding, err)
	}
	if len(embeddings) != 1 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: expected one embedding, got %d", types.ErrEmbedding, len(embeddings))
	}

	return embeddings[0], nil
}

var _ types.EmbeddingProvider = (*Embedder)(nil)
