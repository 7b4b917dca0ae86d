// Package testutil holds hand-written fakes for the interfaces in internal/types.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/xhad/docchat/internal/models"
)

var ErrFake = errors.New("fake failure")

// Embedder maps text to a vector with EmbedFunc, or to a one-hot
// bag of letters when EmbedFunc is nil.
type Embedder struct {
	mu        sync.Mutex
	EmbedFunc func(text string) ([]float32, error)
	Calls     []string
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.Calls = append(e.Calls, text)
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.EmbedFunc != nil {
		return e.EmbedFunc(text)
	}
	return LetterVector(text), nil
}

func (e *Embedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Calls)
}

// LetterVector counts the letters a-z in text.
func LetterVector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

// Index records every Add and answers Query with Results, or with
// all added records in insertion order when Results is nil.
type Index struct {
	mu       sync.Mutex
	Records  []models.IndexRecord
	Results  []models.IndexRecord
	AddErr   error
	QueryErr error
	// FailAfter makes Add fail once this many records were written; 0 disables it.
	FailAfter int
	Queries   int
}

func (i *Index) Add(ctx context.Context, rec models.IndexRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.AddErr != nil {
		return i.AddErr
	}
	if i.FailAfter > 0 && len(i.Records) >= i.FailAfter {
		return ErrFake
	}
	i.Records = append(i.Records, rec)
	return nil
}

func (i *Index) Query(ctx context.Context, embedding []float32, k int) ([]models.IndexRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Queries++
	if i.QueryErr != nil {
		return nil, i.QueryErr
	}
	src := i.Results
	if src == nil {
		src = i.Records
	}
	if k > len(src) {
		k = len(src)
	}
	out := make([]models.IndexRecord, k)
	copy(out, src[:k])
	return out, nil
}

func (i *Index) Close() error { return nil }

// Chat returns Replies in order, then the last one repeatedly.
type Chat struct {
	Replies   []string
	Err       error
	Histories [][]models.DialogueTurn
}

func (c *Chat) Complete(ctx context.Context, history []models.DialogueTurn) (string, error) {
	snapshot := make([]models.DialogueTurn, len(history))
	copy(snapshot, history)
	c.Histories = append(c.Histories, snapshot)

	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Replies) == 0 {
		return "ok", nil
	}
	n := len(c.Histories) - 1
	if n >= len(c.Replies) {
		n = len(c.Replies) - 1
	}
	return c.Replies[n], nil
}

// Pages returns fixed pages per path, or Err.
type Pages struct {
	ByPath map[string][]string
	Err    error
}

func (p *Pages) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	pages, ok := p.ByPath[path]
	if !ok {
		return nil, ErrFake
	}
	return pages, nil
}
