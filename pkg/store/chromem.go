package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
)

type ChromemConfig struct {
	Collection string
	Dimension  int
	// PersistPath is a directory; empty keeps vectors in memory only.
	PersistPath string
	Compress    bool
}

// ChromemIndex stores records in an embedded chromem-go collection.
type ChromemIndex struct {
	mu         sync.Mutex
	config     ChromemConfig
	db         *chromem.DB
	collection *chromem.Collection
}

func NewChromemIndex(config ChromemConfig) (*ChromemIndex, error) {
	if config.Collection == "" {
		config.Collection = "documents"
	}

	var db *chromem.DB
	if config.PersistPath != "" {
		if err := os.MkdirAll(config.PersistPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create persist directory: %v", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(config.PersistPath, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database at %s: %w",
				filepath.Clean(config.PersistPath), err)
		}
	} else {
		db = chromem.NewDB()
	}

	// Embeddings are always supplied by the caller.
	noEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("chromem embedding function called but vectors are pre-computed")
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create collection %q: %w", config.Collection, err)
	}

	return &ChromemIndex{
		config:     config,
		db:         db,
		collection: collection,
	}, nil
}

func (c *ChromemIndex) Add(ctx context.Context, rec models.IndexRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.Dimension == 0 {
		c.config.Dimension = len(rec.Embedding)
	}
	if err := checkDimension(c.config.Dimension, rec.Embedding); err != nil {
		return err
	}

	doc := chromem.Document{
		ID:      rec.Chunk.ID,
		Content: rec.Chunk.Text,
		Metadata: map[string]string{
			"file_path": rec.Chunk.SourcePath,
			"ordinal":   strconv.Itoa(rec.Chunk.Ordinal),
		},
		Embedding: rec.Embedding,
	}
	if err := c.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("%w: %w", types.ErrIndexWrite, err)
	}
	return nil
}

func (c *ChromemIndex) Query(ctx context.Context, embedding []float32, k int) ([]models.IndexRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// chromem rejects nResults larger than the collection.
	k = min(k, c.collection.Count())
	if k <= 0 {
		return []models.IndexRecord{}, nil
	}

	results, err := c.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIndexQuery, err)
	}

	records := make([]models.IndexRecord, 0, len(results))
	for _, r := range results {
		ordinal, _ := strconv.Atoi(r.Metadata["ordinal"])
		records = append(records, models.IndexRecord{
			Chunk: models.Chunk{
				ID:         r.ID,
				Text:       r.Content,
				SourcePath: r.Metadata["file_path"],
				Ordinal:    ordinal,
			},
			Embedding: r.Embedding,
		})
	}
	return records, nil
}

// Close is a no-op; persistent databases are written on every add.
func (c *ChromemIndex) Close() error {
	return nil
}

var _ types.VectorIndex = (*ChromemIndex)(nil)
