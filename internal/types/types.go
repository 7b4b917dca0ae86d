package types

import (
	"context"

	"github.com/xhad/docchat/internal/models"
)

// Core interfaces
type DocumentTextExtractor interface {
	// ExtractPages returns the text of every page in page order.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorIndex interface {
	Add(ctx context.Context, rec models.IndexRecord) error
	// Query returns up to k records, most similar first. An empty index yields no records.
	Query(ctx context.Context, embedding []float32, k int) ([]models.IndexRecord, error)
	Close() error
}

type ChatProvider interface {
	Complete(ctx context.Context, history []models.DialogueTurn) (string, error)
}
