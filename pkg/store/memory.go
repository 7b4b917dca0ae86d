package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
)

// MemoryIndex is an in-process index ranked by brute-force cosine similarity.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	records   []models.IndexRecord
}

// NewMemoryIndex creates an index of the given dimension. A zero dimension
// is fixed by the first record added.
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{dimension: dimension}
}

func (m *MemoryIndex) Add(ctx context.Context, rec models.IndexRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dimension == 0 {
		m.dimension = len(rec.Embedding)
	}
	if err := checkDimension(m.dimension, rec.Embedding); err != nil {
		return err
	}

	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, embedding []float32, k int) ([]models.IndexRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 || k <= 0 {
		return []models.IndexRecord{}, nil
	}
	if len(embedding) != m.dimension {
		return nil, fmt.Errorf("%w: %w: query has %d dimensions, index has %d",
			types.ErrIndexQuery, types.ErrDimensionMismatch, len(embedding), m.dimension)
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(m.records))
	for i, rec := range m.records {
		scores[i] = scored{idx: i, score: cosine(rec.Embedding, embedding)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	k = min(k, len(scores))
	results := make([]models.IndexRecord, 0, k)
	for _, s := range scores[:k] {
		results = append(results, m.records[s.idx])
	}
	return results, nil
}

// Len reports the number of stored records.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryIndex) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func checkDimension(dimension int, embedding []float32) error {
	if len(embedding) == 0 || (dimension > 0 && len(embedding) != dimension) {
		return fmt.Errorf("%w: %w: got %d, index expects %d",
			types.ErrIndexWrite, types.ErrDimensionMismatch, len(embedding), dimension)
	}
	return nil
}

var _ types.VectorIndex = (*MemoryIndex)(nil)
