// Package retriever finds the chunks most similar to a query.
package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
	"github.com/xhad/docchat/pkg/logger"
)

const DefaultTopK = 2

type Retriever struct {
	embedder types.EmbeddingProvider
	index    types.VectorIndex
	topK     int
	logger   hclog.Logger
}

// New returns a Retriever answering with topK chunks; topK <= 0 uses DefaultTopK.
func New(embedder types.EmbeddingProvider, index types.VectorIndex, topK int, log hclog.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		logger:   logger.OrNull(log).Named("retriever"),
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.Chunk, error) {
	return r.RetrieveK(ctx, query, r.topK)
}

// RetrieveK returns up to k chunks, most similar first.
func (r *Retriever) RetrieveK(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	if k <= 0 {
		k = r.topK
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, wrap(types.ErrEmbedding, "failed to embed query", err)
	}

	records, err := r.index.Query(ctx, embedding, k)
	if err != nil {
		return nil, wrap(types.ErrIndexQuery, "failed to query index", err)
	}

	chunks := make([]models.Chunk, 0, len(records))
	for _, rec := range records {
		chunks = append(chunks, rec.Chunk)
	}
	r.logger.Debug("retrieved chunks", "k", k, "found", len(chunks))
	return chunks, nil
}

func wrap(sentinel error, msg string, err error) error {
	if errors.Is(err, sentinel) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, sentinel, err)
}
