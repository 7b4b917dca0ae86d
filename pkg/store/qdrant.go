package store

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type QdrantConfig struct {
	Host       string
	Port       int // gRPC port
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  int
}

// QdrantIndex stores records as points in a Qdrant collection using cosine distance.
type QdrantIndex struct {
	client *qdrant.Client
	config QdrantConfig
	ready  bool
}

func NewQdrantIndex(config QdrantConfig) (*QdrantIndex, error) {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 6334
	}
	if config.Collection == "" {
		config.Collection = "documents"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client for %s:%d: %w", config.Host, config.Port, err)
	}

	return &QdrantIndex{
		client: client,
		config: config,
	}, nil
}

// ensureCollection creates the collection on first write, sized from the
// configured dimension or the first embedding.
func (q *QdrantIndex) ensureCollection(ctx context.Context, dimension int) error {
	if q.ready {
		return nil
	}

	exists, err := q.client.CollectionExists(ctx, q.config.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.config.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil && !alreadyExists(err) {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	q.ready = true
	return nil
}

func (q *QdrantIndex) Add(ctx context.Context, rec models.IndexRecord) error {
	if q.config.Dimension == 0 {
		q.config.Dimension = len(rec.Embedding)
	}
	if err := checkDimension(q.config.Dimension, rec.Embedding); err != nil {
		return err
	}
	if err := q.ensureCollection(ctx, q.config.Dimension); err != nil {
		return fmt.Errorf("%w: %w", types.ErrIndexWrite, err)
	}

	wait := true
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.config.Collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(rec.Chunk.ID),
				Vectors: qdrant.NewVectors(rec.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"content":   rec.Chunk.Text,
					"file_path": rec.Chunk.SourcePath,
					"ordinal":   int64(rec.Chunk.Ordinal),
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upsert point: %w", types.ErrIndexWrite, err)
	}
	return nil
}

func (q *QdrantIndex) Query(ctx context.Context, embedding []float32, k int) ([]models.IndexRecord, error) {
	if k <= 0 {
		return []models.IndexRecord{}, nil
	}

	exists, err := q.client.CollectionExists(ctx, q.config.Collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIndexQuery, err)
	}
	if !exists {
		return []models.IndexRecord{}, nil
	}

	resp, err := q.client.GetPointsClient().Search(ctx, &qdrant.SearchPoints{
		CollectionName: q.config.Collection,
		Vector:         embedding,
		Limit:          uint64(k),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search points: %w", types.ErrIndexQuery, err)
	}

	records := make([]models.IndexRecord, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		payload := point.GetPayload()
		records = append(records, models.IndexRecord{
			Chunk: models.Chunk{
				ID:         point.GetId().GetUuid(),
				Text:       payload["content"].GetStringValue(),
				SourcePath: payload["file_path"].GetStringValue(),
				Ordinal:    int(payload["ordinal"].GetIntegerValue()),
			},
		})
	}
	return records, nil
}

func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

var _ types.VectorIndex = (*QdrantIndex)(nil)

// alreadyExists reports a CreateCollection lost to a concurrent creator.
func alreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
