// Package indexer embeds chunks and writes them to a vector index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
	"github.com/xhad/docchat/pkg/logger"
)

type Indexer struct {
	mu       sync.Mutex
	embedder types.EmbeddingProvider
	index    types.VectorIndex
	logger   hclog.Logger
}

func New(embedder types.EmbeddingProvider, index types.VectorIndex, log hclog.Logger) *Indexer {
	return &Indexer{
		embedder: embedder,
		index:    index,
		logger:   logger.OrNull(log).Named("indexer"),
	}
}

// Index embeds and stores chunks of filePath in order. Blank chunks are
// skipped. The first failure stops the file; records written before it
// stay in the index and are included in the returned count.
func (ix *Indexer) Index(ctx context.Context, filePath string, chunks []string) (int, error) {
	written := 0
	for ordinal, text := range chunks {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}

		embedding, err := ix.embedder.Embed(ctx, text)
		if err != nil {
			return written, wrap(types.ErrEmbedding, filePath, ordinal, err)
		}

		if err := ix.add(ctx, filePath, ordinal, text, embedding); err != nil {
			return written, wrap(types.ErrIndexWrite, filePath, ordinal, err)
		}
		written++
		ix.logger.Debug("indexed chunk", "path", filePath, "ordinal", ordinal, "runes", len([]rune(text)))
	}
	return written, nil
}

func (ix *Indexer) add(ctx context.Context, filePath string, ordinal int, text string, embedding []float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return ix.index.Add(ctx, models.IndexRecord{
		Chunk: models.Chunk{
			ID:         uuid.NewString(),
			Text:       text,
			SourcePath: filePath,
			Ordinal:    ordinal,
		},
		Embedding: embedding,
	})
}

func wrap(sentinel error, filePath string, ordinal int, err error) error {
	if errors.Is(err, sentinel) {
		return fmt.Errorf("failed to index chunk %d of %s: %w", ordinal, filePath, err)
	}
	return fmt.Errorf("failed to index chunk %d of %s: %w: %w", ordinal, filePath, sentinel, err)
}
