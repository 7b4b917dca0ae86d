package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// TokenCounter estimates how many tokens a text costs the model.
// It falls back to a quarter of the rune count when the BPE ranks
// cannot be loaded.
type TokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	tc.once.Do(func() {
		enc, err := tiktoken.GetEncoding(defaultEncoding)
		if err == nil {
			tc.enc = enc
		}
	})
	if tc.enc != nil {
		return len(tc.enc.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

// EstimateTokens approximates four runes per token.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
