package types

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDecode            = errors.New("invalid text encoding")
	ErrExtraction        = errors.New("extraction failed")
	ErrEmbedding         = errors.New("embedding failed")
	ErrIndexWrite        = errors.New("index write failed")
	ErrIndexQuery        = errors.New("index query failed")
	ErrChatProvider      = errors.New("chat completion failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
