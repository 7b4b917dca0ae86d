package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
)

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

// VectorStore keeps records in a PostgreSQL table with a pgvector column,
// ranked by cosine distance.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
	table  string
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
		table:  pgx.Identifier{config.TableName}.Sanitize(),
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			content TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			embedding vector(%d)
		)`, vs.table, vs.config.VectorDim)

	if _, err = vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s
		ON %s
		USING hnsw (embedding vector_cosine_ops)`,
		pgx.Identifier{vs.config.TableName + "_embedding_idx"}.Sanitize(), vs.table)

	if _, err = vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

func (vs *VectorStore) Add(ctx context.Context, rec models.IndexRecord) error {
	if err := checkDimension(vs.config.VectorDim, rec.Embedding); err != nil {
		return err
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source_path, content, ordinal, embedding)
		VALUES ($1, $2, $3, $4, $5)`,
		vs.table)

	_, err := vs.pool.Exec(ctx, stmt,
		rec.Chunk.ID,
		sanitizeUTF8(rec.Chunk.SourcePath),
		sanitizeUTF8(rec.Chunk.Text),
		rec.Chunk.Ordinal,
		pgvector.NewVector(rec.Embedding),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert chunk %s: %w", types.ErrIndexWrite, rec.Chunk.ID, err)
	}
	return nil
}

func (vs *VectorStore) Query(ctx context.Context, embedding []float32, k int) ([]models.IndexRecord, error) {
	if k <= 0 {
		return []models.IndexRecord{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, source_path, content, ordinal
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.table)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query documents: %w", types.ErrIndexQuery, err)
	}
	defer rows.Close()

	records := []models.IndexRecord{}
	for rows.Next() {
		var chunk models.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.SourcePath, &chunk.Text, &chunk.Ordinal); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %w", types.ErrIndexQuery, err)
		}
		records = append(records, models.IndexRecord{Chunk: chunk})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIndexQuery, err)
	}

	return records, nil
}

func (vs *VectorStore) Close() error {
	if vs.pool != nil {
		vs.pool.Close()
	}
	return nil
}

// PostgreSQL TEXT rejects invalid UTF-8; PDF extraction occasionally produces it.
func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}

var _ types.VectorIndex = (*VectorStore)(nil)
