package store

import (
	"context"
	"fmt"

	"github.com/xhad/docchat/internal/types"
)

// Index backends.
const (
	TypeMemory   = "memory"
	TypeChromem  = "chromem"
	TypePgVector = "pgvector"
	TypeQdrant   = "qdrant"
)

type Config struct {
	Type       string
	Dimension  int
	Collection string
	PgVector   VectorStoreConfig
	Chromem    ChromemConfig
	Qdrant     QdrantConfig
}

// New opens the vector index selected by config.Type. Dimension and
// Collection apply to every backend unless the backend config overrides them.
func New(ctx context.Context, config Config) (types.VectorIndex, error) {
	switch config.Type {
	case TypeMemory, "":
		return NewMemoryIndex(config.Dimension), nil

	case TypeChromem:
		cfg := config.Chromem
		cfg.Collection = firstNonEmpty(cfg.Collection, config.Collection)
		cfg.Dimension = firstPositive(cfg.Dimension, config.Dimension)
		return NewChromemIndex(cfg)

	case TypePgVector:
		cfg := config.PgVector
		cfg.TableName = firstNonEmpty(cfg.TableName, config.Collection)
		cfg.VectorDim = firstPositive(cfg.VectorDim, config.Dimension)
		return NewWithConfig(ctx, cfg)

	case TypeQdrant:
		cfg := config.Qdrant
		cfg.Collection = firstNonEmpty(cfg.Collection, config.Collection)
		cfg.Dimension = firstPositive(cfg.Dimension, config.Dimension)
		return NewQdrantIndex(cfg)
	}

	return nil, fmt.Errorf("unknown index type %q", config.Type)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
